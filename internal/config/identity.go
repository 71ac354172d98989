package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Identity describes the organizer sending the invitations
type Identity struct {
	Organization struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Website     string `yaml:"website"`
	} `yaml:"organization"`
	Representative struct {
		Name  string `yaml:"name"`
		Role  string `yaml:"role"`
		Email string `yaml:"email"`
	} `yaml:"representative"`
	Event struct {
		Name         string `yaml:"name"`
		Venue        string `yaml:"venue"`
		Date         string `yaml:"date"`
		TargetActors int    `yaml:"target_actors"`
	} `yaml:"event"`
	MessagingGuidelines struct {
		Tone         string   `yaml:"tone"`
		KeyPoints    []string `yaml:"key_points"`
		CallToAction string   `yaml:"call_to_action"`
	} `yaml:"messaging_guidelines"`
}

// LoadIdentity reads the organizer identity from a YAML file
func LoadIdentity(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("identity file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read identity file %s: %w", path, err)
	}

	var id Identity
	if err := yaml.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("failed to parse identity YAML: %w", err)
	}
	return &id, nil
}

// Summary renders the identity as the short text block embedded in prompts
func (id *Identity) Summary() string {
	if id == nil {
		return ""
	}

	repName := orDefault(id.Representative.Name, "Unbekannt")
	repRole := orDefault(id.Representative.Role, "Rolle unbekannt")
	orgName := orDefault(id.Organization.Name, "Organisation unbekannt")

	parts := []string{fmt.Sprintf("%s (%s) vom %s.", repName, repRole, orgName)}
	if id.Organization.Description != "" {
		parts = append(parts, "Organisation: "+id.Organization.Description)
	}
	if id.Event.Name != "" {
		venue := orDefault(id.Event.Venue, "Veranstaltungsort unbekannt")
		parts = append(parts, fmt.Sprintf("Plant aktuell: %s am Standort %s.", id.Event.Name, venue))
	}
	if id.Event.TargetActors > 0 {
		parts = append(parts, fmt.Sprintf("Ziel: ca. %d Ausstellende.", id.Event.TargetActors))
	}
	if len(id.MessagingGuidelines.KeyPoints) > 0 {
		parts = append(parts, "Wichtige Botschaften: "+strings.Join(id.MessagingGuidelines.KeyPoints, "; "))
	}
	if id.MessagingGuidelines.CallToAction != "" {
		parts = append(parts, "Call-to-Action: "+id.MessagingGuidelines.CallToAction)
	}
	return strings.Join(parts, " ")
}

func orDefault(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
