package core

import (
	"errors"
	"testing"
	"time"
)

func buildAt(t *testing.T, rows []RawRow, now time.Time) *ReferenceTable {
	t.Helper()
	table, err := buildReferenceTable(rows, now)
	if err != nil {
		t.Fatalf("buildReferenceTable() error = %v", err)
	}
	return table
}

func TestBuildReferenceTable_ReferenceRows(t *testing.T) {
	rows := []RawRow{
		ReferenceRow("Tesla", "Model 3", 40000, 2020),
		ReferenceRow("Nissan", "Leaf", 12000, 2018),
	}
	table := buildAt(t, rows, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	if table.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", table.Size())
	}

	rec, ok := table.Lookup("Tesla", "Model 3")
	if !ok {
		t.Fatal("Lookup(Tesla, Model 3) not found")
	}
	if rec.BasePrice != 40000 {
		t.Errorf("BasePrice = %v, want 40000", rec.BasePrice)
	}
	if rec.ReferenceYear != 2020 {
		t.Errorf("ReferenceYear = %d, want 2020", rec.ReferenceYear)
	}
	if rec.SampleCount != 1 {
		t.Errorf("SampleCount = %d, want 1", rec.SampleCount)
	}
}

func TestBuildReferenceTable_AggregatesTransactionalRows(t *testing.T) {
	rows := []RawRow{
		TransactionalRow("Kia", "Niro", 20000, 2019, true),
		TransactionalRow("Kia", "Niro", 22000, 2021, true),
	}
	table := buildAt(t, rows, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	rec, ok := table.Lookup("Kia", "Niro")
	if !ok {
		t.Fatal("Lookup(Kia, Niro) not found")
	}
	if rec.BasePrice != 21000 {
		t.Errorf("BasePrice = %v, want 21000 (mean of 20000 and 22000)", rec.BasePrice)
	}
	if rec.ReferenceYear != 2020 {
		t.Errorf("ReferenceYear = %d, want 2020 (mean of 2019 and 2021)", rec.ReferenceYear)
	}
	if rec.SampleCount != 2 {
		t.Errorf("SampleCount = %d, want 2", rec.SampleCount)
	}
}

func TestBuildReferenceTable_ReferenceRowWinsOverTransactional(t *testing.T) {
	rows := []RawRow{
		TransactionalRow("Tesla", "Model 3", 30000, 2019, true),
		ReferenceRow("Tesla", "Model 3", 40000, 2020),
		TransactionalRow("Tesla", "Model 3", 50000, 2022, true),
	}
	table := buildAt(t, rows, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	rec, _ := table.Lookup("tesla", "model 3")
	if rec.BasePrice != 40000 {
		t.Errorf("BasePrice = %v, want 40000 (explicit anchor wins)", rec.BasePrice)
	}
	if rec.ReferenceYear != 2020 {
		t.Errorf("ReferenceYear = %d, want 2020", rec.ReferenceYear)
	}
	if rec.SampleCount != 1 {
		t.Errorf("SampleCount = %d, want 1 (transactional rows ignored)", rec.SampleCount)
	}
}

func TestBuildReferenceTable_MissingRegistrationYearDefaultsToCurrentYear(t *testing.T) {
	rows := []RawRow{
		TransactionalRow("Kia", "Niro", 20000, 0, false),
	}
	table := buildAt(t, rows, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC))

	rec, _ := table.Lookup("Kia", "Niro")
	if rec.ReferenceYear != 2023 {
		t.Errorf("ReferenceYear = %d, want 2023 (current year fallback)", rec.ReferenceYear)
	}
}

func TestBuildReferenceTable_EmptyDataset(t *testing.T) {
	_, err := BuildReferenceTable(nil)
	if !errors.Is(err, ErrDatasetEmpty) {
		t.Errorf("BuildReferenceTable(nil) error = %v, want ErrDatasetEmpty", err)
	}

	// Rows that all get dropped must also fail the build.
	rows := []RawRow{
		ReferenceRow("", "", 10000, 2020),
		TransactionalRow("Kia", "Niro", -1, 0, false),
	}
	_, err = BuildReferenceTable(rows)
	if !errors.Is(err, ErrDatasetEmpty) {
		t.Errorf("BuildReferenceTable(unusable rows) error = %v, want ErrDatasetEmpty", err)
	}
}

func TestBuildReferenceTable_Idempotent(t *testing.T) {
	rows := []RawRow{
		ReferenceRow("Tesla", "Model 3", 40000, 2020),
		TransactionalRow("Kia", "Niro", 20000, 2019, true),
		TransactionalRow("Kia", "Niro", 22000, 2021, true),
	}
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	first := buildAt(t, rows, now)
	second := buildAt(t, rows, now)

	if first.Size() != second.Size() {
		t.Fatalf("sizes differ: %d vs %d", first.Size(), second.Size())
	}
	for _, pair := range [][2]string{{"Tesla", "Model 3"}, {"Kia", "Niro"}} {
		a, _ := first.Lookup(pair[0], pair[1])
		b, _ := second.Lookup(pair[0], pair[1])
		if a != b {
			t.Errorf("Lookup(%s, %s) differs between builds: %+v vs %+v", pair[0], pair[1], a, b)
		}
	}
}

func TestLookup_NormalizesCaseAndWhitespace(t *testing.T) {
	table := buildAt(t, []RawRow{ReferenceRow("Tesla", "Model 3", 40000, 2020)},
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	exact, ok := table.Lookup("tesla", "model 3")
	if !ok {
		t.Fatal("Lookup(tesla, model 3) not found")
	}
	padded, ok := table.Lookup(" Tesla ", "Model 3")
	if !ok {
		t.Fatal("Lookup(\" Tesla \", Model 3) not found")
	}
	if exact != padded {
		t.Errorf("normalized lookups differ: %+v vs %+v", exact, padded)
	}
}

func TestLookup_UnknownKey(t *testing.T) {
	table := buildAt(t, []RawRow{ReferenceRow("Tesla", "Model 3", 40000, 2020)},
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	if _, ok := table.Lookup("BMW", "X5"); ok {
		t.Error("Lookup(BMW, X5) = found, want not found")
	}
}

func TestMakesAndModels(t *testing.T) {
	rows := []RawRow{
		ReferenceRow("Volkswagen", "ID.4", 26000, 2021),
		ReferenceRow("Tesla", "Model Y", 35000, 2021),
		ReferenceRow("Tesla", "Model 3", 28000, 2019),
		ReferenceRow("Nissan", "Leaf", 12000, 2018),
	}
	table := buildAt(t, rows, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	makes := table.Makes()
	wantMakes := []string{"Nissan", "Tesla", "Volkswagen"}
	if len(makes) != len(wantMakes) {
		t.Fatalf("Makes() = %v, want %v", makes, wantMakes)
	}
	for i := range wantMakes {
		if makes[i] != wantMakes[i] {
			t.Errorf("Makes()[%d] = %q, want %q", i, makes[i], wantMakes[i])
		}
	}

	models := table.Models(" TESLA ")
	wantModels := []string{"Model 3", "Model Y"}
	if len(models) != len(wantModels) {
		t.Fatalf("Models(TESLA) = %v, want %v", models, wantModels)
	}
	for i := range wantModels {
		if models[i] != wantModels[i] {
			t.Errorf("Models(TESLA)[%d] = %q, want %q", i, models[i], wantModels[i])
		}
	}

	if got := table.Models("BMW"); len(got) != 0 {
		t.Errorf("Models(BMW) = %v, want empty", got)
	}
}

func TestBuildReferenceTable_DistinctBuildIDs(t *testing.T) {
	rows := []RawRow{ReferenceRow("Tesla", "Model 3", 40000, 2020)}
	first, err := BuildReferenceTable(rows)
	if err != nil {
		t.Fatalf("BuildReferenceTable() error = %v", err)
	}
	second, err := BuildReferenceTable(rows)
	if err != nil {
		t.Fatalf("BuildReferenceTable() error = %v", err)
	}
	if first.BuildID == second.BuildID {
		t.Error("expected distinct build IDs for separate builds")
	}
}
