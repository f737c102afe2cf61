package npu

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		want  RoutingCode
	}{
		{name: "digits only", input: "00000012320248260100", want: "826"},
		{name: "masked", input: "0000001-23.2024.8.26.0100", want: "826"},
		{name: "federal", input: "1000123-45.2023.4.03.6100", want: "403"},
		{name: "labor", input: "0010001-11.2022.5.01.0001", want: "501"},
		{name: "superior", input: "0000001-11.2022.3.00.0000", want: "300"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tc.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("Parse(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseInvalidLength(t *testing.T) {
	t.Parallel()

	for _, input := range []string{
		"0000001232024826010",   // 19 digits
		"000000123202482601001", // 21 digits
		"",
		"abc",
	} {
		if _, err := Parse(input); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("Parse(%q) error = %v, want ErrInvalidFormat", input, err)
		}
	}
}

func TestParseDeterministic(t *testing.T) {
	t.Parallel()

	first, err := Parse("00000012320248260100")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Parse("00000012320248260100")
		if err != nil || again != first {
			t.Fatalf("iteration %d: got %q, %v", i, again, err)
		}
	}
}

func TestRoutingCodeParts(t *testing.T) {
	t.Parallel()

	code := RoutingCode("826")
	if code.Justice() != '8' {
		t.Fatalf("unexpected justice digit: %c", code.Justice())
	}
	if code.Region() != "26" {
		t.Fatalf("unexpected region: %s", code.Region())
	}
	if RoutingCode("8").Region() != "" {
		t.Fatalf("short code should have empty region")
	}
}

func TestFormatAndShort(t *testing.T) {
	t.Parallel()

	if got := Format("00000012320248260100"); got != "0000001-23.2024.8.26.0100" {
		t.Fatalf("unexpected format: %s", got)
	}
	if got := Format("123"); got != "123" {
		t.Fatalf("invalid input should be returned unchanged, got %s", got)
	}
	if got := Short("00000012320248260100"); got != "248260100" {
		t.Fatalf("unexpected short: %s", got)
	}
}
