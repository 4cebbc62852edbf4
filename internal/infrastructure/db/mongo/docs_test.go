package mongo

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ankatech/investor-admin/internal/core/domain"
)

func TestAssetDoc_DecimalRoundTrip(t *testing.T) {
	doc, err := assetToDoc(domain.Asset{ID: "a1", Name: "LCI", CurrentValue: decimal.RequireFromString("1234.56")})
	if err != nil {
		t.Fatalf("assetToDoc returned error: %v", err)
	}
	got := doc.toDomain()
	if !got.CurrentValue.Equal(decimal.RequireFromString("1234.56")) {
		t.Fatalf("unexpected value: %s", got.CurrentValue)
	}
}

func TestAssetDoc_BadDecimalIsZero(t *testing.T) {
	got := assetDoc{ID: "a1", CurrentValue: primitive.NewDecimal128(0x7c00000000000000, 0)}.toDomain()
	if !got.CurrentValue.IsZero() {
		t.Fatalf("expected zero for NaN, got %s", got.CurrentValue)
	}
}

func TestClientDoc_LegacyStatusAndNormalizedIDs(t *testing.T) {
	c := clientDoc{ID: "c1", Status: "inativo", AssetIDs: []string{"a1", "", "a1", "a2"}}.toDomain()
	if c.Status != domain.StatusInactive {
		t.Fatalf("expected INATIVO, got %q", c.Status)
	}
	if len(c.AssetIDs) != 2 {
		t.Fatalf("expected normalized ids, got %v", c.AssetIDs)
	}
}
