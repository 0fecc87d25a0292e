package store

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/reqm/internal/ir"
)

func TestMarshalStrings_Nil(t *testing.T) {
	got, err := marshalStrings(nil)
	if err != nil {
		t.Fatalf("marshalStrings() failed: %v", err)
	}
	if got != "[]" {
		t.Errorf("marshalStrings(nil) = %q, want []", got)
	}
}

func TestMarshalStrings_KeepsOrder(t *testing.T) {
	got, err := marshalStrings([]string{"Sequence", "Equatable"})
	if err != nil {
		t.Fatalf("marshalStrings() failed: %v", err)
	}
	if want := `["Sequence","Equatable"]`; got != want {
		t.Errorf("marshalStrings() = %s, want %s", got, want)
	}
}

func TestMarshalPath_Canonical(t *testing.T) {
	got, err := marshalPath([]ir.StepRecord{
		{Kind: "rule", Offset: 0, RuleID: 3, Inverse: true},
		{Kind: "adjust", Offset: 1},
	})
	if err != nil {
		t.Fatalf("marshalPath() failed: %v", err)
	}
	want := `[{"inverse":true,"kind":"rule","offset":0,"rule_id":3},{"inverse":false,"kind":"adjust","offset":1,"rule_id":0}]`
	if got != want {
		t.Errorf("marshalPath() =\n%s\nwant\n%s", got, want)
	}
}

func TestUnmarshalStrings_Empty(t *testing.T) {
	for _, data := range []string{"", "[]"} {
		got, err := unmarshalStrings(data)
		if err != nil {
			t.Fatalf("unmarshalStrings(%q) failed: %v", data, err)
		}
		if got != nil {
			t.Errorf("unmarshalStrings(%q) = %v, want nil", data, got)
		}
	}
}

func TestUnmarshalPath_InvalidJSON(t *testing.T) {
	if _, err := unmarshalPath("{not json"); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestMarshalInput_NoHTMLEscaping(t *testing.T) {
	got, err := marshalInput(ir.RequirementSet{
		Rules: []ir.RuleSpec{{ID: "r", LHS: "τ_0_0.[P&Q:T]", RHS: "τ_0_0"}},
	})
	if err != nil {
		t.Fatalf("marshalInput() failed: %v", err)
	}
	if !strings.Contains(got, `"lhs":"τ_0_0.[P&Q:T]"`) {
		t.Errorf("marshalInput() = %s", got)
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("marshalInput() kept the trailing newline")
	}
}

func TestMarshalInput_Roundtrip(t *testing.T) {
	in := createTestInput()
	data, err := marshalInput(in)
	if err != nil {
		t.Fatalf("marshalInput() failed: %v", err)
	}
	out, err := unmarshalInput(data)
	if err != nil {
		t.Fatalf("unmarshalInput() failed: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}
