package voiceagent

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/geko-ai/receptionist/internal/domain/catalog"
	"github.com/geko-ai/receptionist/internal/domain/tenant"
)

func TestBuildPrompt_Clinic(t *testing.T) {
	tn := &tenant.Tenant{ID: uuid.New(), Name: "Sunrise Dental", Kind: tenant.KindClinic}
	offerings := []*catalog.Offering{
		{Name: "Checkup", DurationMinutes: 30, Active: true},
		{Name: "Whitening", DurationMinutes: 60, Active: false},
	}

	prompt, err := BuildPrompt(tn, offerings)
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}
	for _, want := range []string{"Sunrise Dental", "clinic", "appointment", "Checkup (30 minutes)"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "Whitening") {
		t.Error("inactive offering must not appear in prompt")
	}
}

func TestBuildPrompt_Restaurant(t *testing.T) {
	tn := &tenant.Tenant{ID: uuid.New(), Name: "Luigi's Bistro", Kind: tenant.KindRestaurant}

	prompt, err := BuildPrompt(tn, nil)
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}
	if !strings.Contains(prompt, "restaurant") || !strings.Contains(prompt, "reservation") {
		t.Errorf("restaurant persona missing:\n%s", prompt)
	}
	if strings.Contains(prompt, "Services offered") {
		t.Error("empty catalog must not render a services section")
	}
}

func TestBuildGreeting(t *testing.T) {
	custom := "Ciao! Luigi's, how can I help?"
	tn := &tenant.Tenant{Name: "Luigi's Bistro", Kind: tenant.KindRestaurant, Greeting: &custom}

	got, err := BuildGreeting(tn)
	if err != nil || got != custom {
		t.Fatalf("got %q, %v; want custom greeting", got, err)
	}

	tn.Greeting = nil
	got, err = BuildGreeting(tn)
	if err != nil {
		t.Fatalf("BuildGreeting: %v", err)
	}
	if !strings.Contains(got, "Luigi's Bistro") {
		t.Errorf("default greeting missing name: %q", got)
	}
}
