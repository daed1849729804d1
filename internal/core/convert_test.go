package core

import "testing"

// ----------------------------------------------------------------------------
// ParsePopulation Tests
// ----------------------------------------------------------------------------

func TestParsePopulation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "plain integer", input: "39512223", want: 39512223},
		{name: "zero", input: "0", want: 0},
		{name: "thousands separators", input: "39,512,223", want: 39512223},
		{name: "integral float", input: "578759.0", want: 578759},
		{name: "scientific notation", input: "1.5e6", want: 1500000},
		{name: "quoted", input: `"28995881"`, want: 28995881},
		{name: "excel formula prefix", input: `="705749"`, want: 705749},
		{name: "surrounding whitespace", input: "  1000  ", want: 1000},

		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "negative", input: "-5", wantErr: true},
		{name: "negative float", input: "-5.0", wantErr: true},
		{name: "fractional", input: "10.5", wantErr: true},
		{name: "letters", input: "abc", wantErr: true},
		{name: "mixed", input: "12a4", wantErr: true},
		{name: "not a number", input: "NaN", wantErr: true},
		{name: "largest int64", input: "9223372036854775807", want: 9223372036854775807},
		{name: "one past int64", input: "9223372036854775808", wantErr: true},
		{name: "float rounding to 2^63", input: "9.223372036854775807e18", wantErr: true},
		{name: "huge float", input: "1e300", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePopulation(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePopulation(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePopulation(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePopulation(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseYear Tests
// ----------------------------------------------------------------------------

func TestParseYear(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "2019", want: 2019},
		{input: " 2010 ", want: 2010},
		{input: "2015.0", want: 2015},
		{input: `="2012"`, want: 2012},
		{input: "", wantErr: true},
		{input: "20x9", wantErr: true},
		{input: "2015.5", wantErr: true},
		{input: "19", wantErr: true},
		{input: "20190", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseYear(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseYear(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseYear(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseYear(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Header / cell helpers
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"  California ", "California"},
		{`"Texas"`, "Texas"},
		{`="CA"`, "CA"},
		{"=42", "42"},
		{"'WY'", "WY"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.input); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMakeHeaderIndex(t *testing.T) {
	idx := MakeHeaderIndex([]string{" States ", "STATES_CODE", `"id"`, "year", "population", "year"})

	want := map[string]int{"states": 0, "states_code": 1, "id": 2, "year": 3, "population": 4}
	for k, v := range want {
		if idx[k] != v {
			t.Errorf("idx[%q] = %d, want %d", k, idx[k], v)
		}
	}
	if len(idx) != len(want) {
		t.Errorf("len(idx) = %d, want %d (duplicate header should keep first)", len(idx), len(want))
	}
}

func TestNormalizeStateCode(t *testing.T) {
	if got := NormalizeStateCode(" ca "); got != "CA" {
		t.Errorf("NormalizeStateCode() = %q, want %q", got, "CA")
	}
}
