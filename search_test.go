package nestidx

import (
	"testing"

	searchuc "github.com/kailas-cloud/nestidx/internal/usecase/search"
)

func TestToInternalFilters(t *testing.T) {
	fe := FilterExpression{
		Must: []FilterCondition{{Key: "category", Match: "electronics"}},
	}

	expr, err := toInternalFilters(fe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.IsEmpty() {
		t.Error("expected non-empty expression")
	}
	if len(expr.Must()) != 1 || expr.Must()[0].Key() != "category" {
		t.Errorf("must = %+v, want one condition on category", expr.Must())
	}
}

func TestToInternalFilters_Empty(t *testing.T) {
	expr, err := toInternalFilters(FilterExpression{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !expr.IsEmpty() {
		t.Error("expected empty expression")
	}
}

func TestToInternalFilters_Range(t *testing.T) {
	gte, lte := 10.0, 100.0
	fe := FilterExpression{
		Must: []FilterCondition{{Key: "price", Range: &RangeFilter{GTE: &gte, LTE: &lte}}},
	}

	expr, err := toInternalFilters(fe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cond := expr.Must()[0]
	if !cond.IsRange() {
		t.Error("expected range condition")
	}
	if *cond.Range().GTE() != 10.0 {
		t.Errorf("GTE = %f, want 10.0", *cond.Range().GTE())
	}
}

func TestToInternalFilters_InvalidRange(t *testing.T) {
	gt, gte := 5.0, 10.0
	fe := FilterExpression{
		Must: []FilterCondition{{Key: "price", Range: &RangeFilter{GT: &gt, GTE: &gte}}},
	}
	if _, err := toInternalFilters(fe); err == nil {
		t.Fatal("expected error for mutually exclusive gt/gte")
	}
}

func TestFromSearchResponse_Empty(t *testing.T) {
	resp := fromSearchResponse(searchuc.Response{})
	if resp.Found != 0 || len(resp.Hits) != 0 {
		t.Errorf("resp = %+v, want zero value", resp)
	}
}
