package voiceagent

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/geko-ai/receptionist/internal/domain/catalog"
	"github.com/geko-ai/receptionist/internal/domain/tenant"
)

// promptTemplate is the system prompt a provisioned agent runs with. The
// receptionist persona adapts to the tenant kind; offerings are listed so
// the agent quotes real services and durations.
var promptTemplate = template.Must(template.New("prompt").Parse(strings.TrimSpace(`
You are the phone receptionist for {{.Name}}, a {{.KindNoun}}.
Answer briefly and warmly, as a person would on the phone.

You can check open {{.SlotNoun}} times, book them, and cancel them using
the tools available to you. Always confirm the date, time, and the
caller's name before booking. Dates are spoken back in plain words.

{{- if .Services}}

Services offered:
{{- range .Services}}
- {{.Name}} ({{.DurationMinutes}} minutes)
{{- end}}
{{- end}}

If a request is outside booking, hours, or services, offer to take a
message for the staff. Never invent availability; only offer times the
availability tool returned.
`)))

var greetingTemplate = template.Must(template.New("greeting").Parse(
	`Thank you for calling {{.Name}}! How can I help you today?`))

type promptData struct {
	Name     string
	KindNoun string
	SlotNoun string
	Services []*catalog.Offering
}

// BuildPrompt renders the agent system prompt from tenant data. Inactive
// offerings are left out.
func BuildPrompt(t *tenant.Tenant, offerings []*catalog.Offering) (string, error) {
	data := promptData{
		Name:     t.Name,
		KindNoun: "clinic",
		SlotNoun: "appointment",
	}
	if t.Kind == tenant.KindRestaurant {
		data.KindNoun = "restaurant"
		data.SlotNoun = "reservation"
	}
	for _, o := range offerings {
		if o.Active {
			data.Services = append(data.Services, o)
		}
	}

	var b strings.Builder
	if err := promptTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

// BuildGreeting returns the tenant's configured greeting, or a rendered
// default when none is set.
func BuildGreeting(t *tenant.Tenant) (string, error) {
	if t.Greeting != nil && strings.TrimSpace(*t.Greeting) != "" {
		return *t.Greeting, nil
	}
	var b strings.Builder
	if err := greetingTemplate.Execute(&b, t); err != nil {
		return "", fmt.Errorf("render greeting: %w", err)
	}
	return b.String(), nil
}
