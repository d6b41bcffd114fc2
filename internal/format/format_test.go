package format

import (
	"testing"
	"time"
)

func TestPhone(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: "+7"},
		{name: "full number with country code", in: "79181234567", want: "+7 (918) 123-45-67"},
		{name: "full number without country code", in: "9181234567", want: "+7 (918) 123-45-67"},
		{name: "formatted input is renormalized", in: "+7 (918) 123-45-67", want: "+7 (918) 123-45-67"},
		{name: "partial area code", in: "791", want: "+7 (91"},
		{name: "partial local part", in: "791812", want: "+7 (918) 12"},
		{name: "letters are stripped", in: "тел. 9181234567", want: "+7 (918) 123-45-67"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Phone(tc.in); got != tc.want {
				t.Fatalf("Phone(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestDateTime(t *testing.T) {
	ts := time.Date(2024, time.November, 3, 18, 5, 0, 0, time.UTC)
	if got := DateTime(ts); got != "03.11.2024 18:05" {
		t.Fatalf("DateTime() = %q", got)
	}
	if got := DateTime(time.Time{}); got != "" {
		t.Fatalf("DateTime(zero) = %q, want empty", got)
	}
}

func TestDate(t *testing.T) {
	ts := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	if got := Date(ts); got != "29.02.2024" {
		t.Fatalf("Date() = %q", got)
	}
}
