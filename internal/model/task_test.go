package model

import "testing"

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"all", FilterAll, false},
		{"Active", FilterActive, false},
		{"pending", FilterActive, false},
		{" done ", FilterDone, false},
		{"completed", FilterDone, false},
		{"archived", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFilter(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFilter(%q): err=%v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFilter(%q): got %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFilterMatch(t *testing.T) {
	open, closed := Task{Done: false}, Task{Done: true}
	tests := []struct {
		f            Filter
		open, closed bool
	}{
		{FilterAll, true, true},
		{FilterActive, true, false},
		{FilterDone, false, true},
	}
	for _, tt := range tests {
		if got := tt.f.Match(open); got != tt.open {
			t.Errorf("%s.Match(open): got %v", tt.f, got)
		}
		if got := tt.f.Match(closed); got != tt.closed {
			t.Errorf("%s.Match(done): got %v", tt.f, got)
		}
	}
}

func TestFilterValid(t *testing.T) {
	for _, f := range Filters() {
		if !f.Valid() {
			t.Errorf("%s should be valid", f)
		}
	}
	if Filter("later").Valid() {
		t.Error("unknown filter reported valid")
	}
}
