package tenant

import (
	"fmt"
	"regexp"
	"strings"
)

// HintKind tags an identity signal extracted from an inbound tool-call
// payload. Hints are classified once at the boundary so the resolution
// chain operates over a typed list instead of re-inspecting raw strings.
type HintKind int

const (
	HintExplicit HintKind = iota // syntactically valid tenant UUID
	HintAgentID                  // voice-agent identifier
	HintPhone                    // phone number in any formatting
	HintName                     // free-text business name
)

// Hint is one candidate identity signal.
type Hint struct {
	Kind  HintKind
	Value string
}

var uuidShape = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

// payloadViews are the nested objects a tool-call body may wrap its real
// parameters under, probed in order. The voice-agent platform has shipped
// several body shapes over time; adding a view here is the only change a
// new shape needs.
var payloadViews = [][]string{
	{},
	{"call"},
	{"call", "metadata"},
	{"call", "dynamic_variables"},
	{"metadata"},
	{"parameters"},
	{"args"},
	{"arguments"},
	{"dynamic_variables"},
}

// Key spellings per concept. Both snake_case and camelCase variants have
// appeared in production payloads.
var (
	explicitKeys = []string{
		"clinic_id", "clinicId",
		"restaurant_id", "restaurantId",
		"tenant_id", "tenantId",
		"business_id", "businessId",
	}
	agentKeys = []string{
		"agent_id", "agentId",
		"assistant_id", "assistantId",
		"voice_agent_id", "voiceAgentId",
	}
	phoneKeys = []string{
		"to_number", "toNumber",
		"called_number", "calledNumber",
		"tenant_phone", "tenantPhone",
		"business_phone", "businessPhone",
		"clinic_phone", "clinicPhone",
		"from_number", "fromNumber",
	}
	nameKeys = []string{
		"clinic_name", "clinicName",
		"restaurant_name", "restaurantName",
		"business_name", "businessName",
		"tenant_name", "tenantName",
	}
)

// ExtractHints walks the payload views in a fixed order and collects every
// identity signal into a deterministic, de-duplicated hint list. An
// explicit-id value that is not UUID-shaped is demoted to a name hint
// rather than discarded. explicitID, when given (route or query), is
// classified ahead of anything found in the body.
func ExtractHints(payload map[string]any, explicitID string) []Hint {
	var hints []Hint
	seen := make(map[string]bool)

	add := func(kind HintKind, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		key := fmt.Sprintf("%d:%s", kind, value)
		if seen[key] {
			return
		}
		seen[key] = true
		hints = append(hints, Hint{Kind: kind, Value: value})
	}

	classifyExplicit := func(value string) {
		if uuidShape.MatchString(strings.TrimSpace(value)) {
			add(HintExplicit, value)
		} else {
			add(HintName, value)
		}
	}

	if explicitID != "" {
		classifyExplicit(explicitID)
	}

	for _, path := range payloadViews {
		view := viewAt(payload, path)
		if view == nil {
			continue
		}
		for _, k := range explicitKeys {
			if v, ok := stringField(view, k); ok {
				classifyExplicit(v)
			}
		}
		for _, k := range agentKeys {
			if v, ok := stringField(view, k); ok {
				add(HintAgentID, v)
			}
		}
		for _, k := range phoneKeys {
			if v, ok := stringField(view, k); ok {
				add(HintPhone, v)
			}
		}
		for _, k := range nameKeys {
			if v, ok := stringField(view, k); ok {
				add(HintName, v)
			}
		}
	}

	return hints
}

func viewAt(payload map[string]any, path []string) map[string]any {
	view := payload
	for _, key := range path {
		next, ok := view[key].(map[string]any)
		if !ok {
			return nil
		}
		view = next
	}
	return view
}

func stringField(view map[string]any, key string) (string, bool) {
	v, ok := view[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// phoneForms returns the digit-only and +-prefixed normalizations of a raw
// phone hint, in that order. Values without enough digits to be a phone
// number yield nothing.
func phoneForms(raw string) []string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) < 7 {
		return nil
	}
	return []string{d, "+" + d}
}

// normalizeName prepares a free-text hint for name matching: separators
// become spaces and surrounding whitespace is dropped.
func normalizeName(raw string) string {
	s := strings.NewReplacer("_", " ", "-", " ").Replace(raw)
	return strings.Join(strings.Fields(s), " ")
}
