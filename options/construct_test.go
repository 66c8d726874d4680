package options

import (
	"testing"

	"github.com/reoring/oasdoc/schema"
)

func TestSetConstraint_CoversEveryScalarKeyword(t *testing.T) {
	for key, coerce := range scalarKeywords {
		var v any
		for _, raw := range []string{"[1]", "1", "true"} {
			if got, err := coerce(raw); err == nil {
				v = got
				break
			}
		}
		if err := setConstraint(&schema.Schema{}, key, v); err != nil {
			t.Errorf("%s: %v", key, err)
		}
	}
}

func TestEach_ReportsUnsupportedKeyword(t *testing.T) {
	if _, err := each([]entry{{"minimum", 1.0}, {"colour", "blue"}}); err == nil {
		t.Fatalf("expected unsupported constraint error")
	}
	got, err := each([]entry{{"minimum", 5.0}, {"minimum", 1.0}})
	if err != nil || len(got) != 2 || *got[1].Minimum != 1 {
		t.Fatalf("each = %v, %v", got, err)
	}
}
