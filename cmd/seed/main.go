package main

import (
	"context"
	"log"
	"time"

	"vowops/internal/config"
	"vowops/internal/features/form"
	"vowops/internal/features/rule"
	"vowops/internal/features/template"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Seeds a demo inquiry form with two templates and three delivery rules so a
// fresh environment has something to submit against.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.DBName)

	demoForm := &form.Form{
		ID:          primitive.NewObjectID(),
		Name:        "Wedding Inquiry",
		Description: "Public inquiry form embedded on the website",
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Sections: []form.Section{
			{
				ID:    "couple",
				Title: "About You",
				Order: 1,
				Fields: []form.Field{
					{ID: "field_64a1f0", Label: "Your Name", StableID: "coupleName", Mapping: form.MappingName, Type: form.FieldTypeText, Required: true},
					{ID: "field_64a1f1", Label: "Email Address", StableID: "contactEmail", Mapping: form.MappingEmail, Type: form.FieldTypeEmail, Required: true},
					{ID: "field_64a1f2", Label: "Phone Number", Mapping: form.MappingPhone, Type: form.FieldTypePhone},
				},
			},
			{
				ID:    "ceremony",
				Title: "Ceremony Details",
				Order: 2,
				Fields: []form.Field{
					{ID: "field_64a1f3", Label: "Ceremony Date", StableID: "ceremonyDate", Type: form.FieldTypeDate},
					{ID: "field_64a1f4", Label: "Guest Count", StableID: "guestCount", Type: form.FieldTypeNumber},
					{ID: "field_64a1f5", Label: "Ceremony Type", StableID: "ceremonyType", Type: form.FieldTypeSelect, Options: []string{"elopement", "full ceremony", "vow renewal"}},
				},
			},
		},
	}

	if _, err := db.Collection("forms").InsertOne(ctx, demoForm); err != nil {
		log.Fatalf("failed to seed form: %v", err)
	}
	formID := demoForm.ID.Hex()

	welcome := &template.EmailTemplate{
		ID:      primitive.NewObjectID(),
		Name:    "Inquiry Welcome",
		Subject: "Thanks for reaching out, {{firstName}}!",
		Body: "<p>Hi {{firstName}},</p>" +
			"<p>Thank you for your inquiry about a {{ceremonyType}} ceremony. " +
			"We will get back to you within one business day.</p>" +
			"<p>Your reference number is {{trackingToken}}.</p>",
		EnrichScript: `
text := import("text")
parts := text.split(submission.name, " ")
derived := {firstName: parts[0]}
`,
		IsActive: true,
	}
	bigParty := &template.EmailTemplate{
		ID:       primitive.NewObjectID(),
		Name:     "Large Party Heads-Up",
		Subject:  "Large ceremony inquiry: {{name}} ({{guestCount}} guests)",
		Body:     "<p>{{name}} is planning a ceremony for {{guestCount}} guests on {{ceremonyDate}}.</p>",
		CcEmails: []string{"bookings@example.com"},
		IsActive: true,
	}

	for _, tpl := range []*template.EmailTemplate{welcome, bigParty} {
		tpl.CreatedAt = time.Now()
		tpl.UpdatedAt = tpl.CreatedAt
		if _, err := db.Collection("email_templates").InsertOne(ctx, tpl); err != nil {
			log.Fatalf("failed to seed template: %v", err)
		}
	}

	rules := []*rule.EmailRule{
		{
			FormID:         formID,
			Name:           "Welcome every inquiry",
			Active:         true,
			Conditions:     []rule.Condition{},
			TemplateID:     welcome.ID,
			RecipientType:  rule.RecipientField,
			RecipientField: "contactEmail",
		},
		{
			FormID:         formID,
			Name:           "Flag large parties",
			Active:         true,
			Conditions:     []rule.Condition{{Field: "guestCount", Operator: rule.OperatorGreaterThan, Value: 50}},
			TemplateID:     bigParty.ID,
			RecipientType:  rule.RecipientStatic,
			RecipientEmail: "owner@example.com",
		},
		{
			FormID:         formID,
			Name:           "Elopement fast lane",
			Active:         true,
			Conditions:     []rule.Condition{{Field: "ceremonyType", Operator: rule.OperatorEquals, Value: "elopement"}},
			TemplateID:     welcome.ID,
			RecipientType:  rule.RecipientStatic,
			RecipientEmail: "elopements@example.com",
		},
	}

	for _, r := range rules {
		r.CreatedAt = time.Now()
		r.UpdatedAt = r.CreatedAt
		if _, err := db.Collection("email_rules").InsertOne(ctx, r); err != nil {
			log.Fatalf("failed to seed rule: %v", err)
		}
	}

	log.Printf("Seeded form %s with %d templates and %d rules", formID, 2, len(rules))
}
