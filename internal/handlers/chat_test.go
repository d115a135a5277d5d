package handlers

import (
	"strings"
	"testing"
)

func TestCannedCareerReply(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"How do I apply for NSFAS?", "nsfas.org.za"},
		{"Can you help me with my CV?", "two pages"},
		{"I have an interview next week", "researching the organisation"},
		{"Where do I find a learnership?", "accredited qualification"},
		{"I want funding for my startup", "NYDA"},
	}

	for _, tc := range cases {
		reply := cannedCareerReply(tc.message)
		if !strings.Contains(strings.ToLower(reply), strings.ToLower(tc.want)) {
			t.Errorf("cannedCareerReply(%q) missing %q:\n%s", tc.message, tc.want, reply)
		}
	}

	if got := cannedCareerReply("hello"); got != careerMenuReply {
		t.Errorf("unmatched message should return the menu, got:\n%s", got)
	}

	// Matching ignores case
	if got := cannedCareerReply("BURSARY INFO PLEASE"); got == careerMenuReply {
		t.Error("uppercase keyword fell through to the menu")
	}
}

func TestCannedHealthReply(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"I have been feeling very depressed", "0800 567 567"},
		{"Where can I get an HIV test?", "free"},
		{"I think I might be pregnant", "antenatal"},
		{"My friend has a drug problem", "0800 12 13 14"},
		{"This is an emergency", "10177"},
	}

	for _, tc := range cases {
		reply := cannedHealthReply(tc.message)
		if !strings.Contains(strings.ToLower(reply), strings.ToLower(tc.want)) {
			t.Errorf("cannedHealthReply(%q) missing %q:\n%s", tc.message, tc.want, reply)
		}
	}

	menu := cannedHealthReply("hello")
	if menu != healthMenuReply {
		t.Errorf("unmatched message should return the menu, got:\n%s", menu)
	}

	// The default reply always carries the disclaimer and emergency numbers
	if !strings.Contains(menu, "not a doctor") || !strings.Contains(menu, "10177") {
		t.Error("health menu is missing the disclaimer or emergency number")
	}
}
