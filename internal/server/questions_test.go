package server

import "testing"

func TestDrawQuestionsDistinct(t *testing.T) {
	s := newGameServer(fastConfig(), &stubGenerator{})
	for i := 0; i < 20; i++ {
		drawn := s.drawQuestions(3)
		if len(drawn) != 3 {
			t.Fatalf("drew %d questions", len(drawn))
		}
		seen := map[string]bool{}
		for _, question := range drawn {
			if seen[question] {
				t.Fatalf("duplicate question in one draw: %q", question)
			}
			seen[question] = true
		}
	}
}

func TestDrawQuestionsClampsToCorpus(t *testing.T) {
	s := newGameServer(fastConfig(), &stubGenerator{})
	s.questions = []string{"only one?"}
	if drawn := s.drawQuestions(5); len(drawn) != 1 {
		t.Fatalf("expected clamp to corpus size, got %d", len(drawn))
	}
}

func TestValidateName(t *testing.T) {
	if _, err := validateName("  Ada  "); err != nil {
		t.Fatalf("trimmed name rejected: %v", err)
	}
	if name, _ := validateName("  Ada  "); name != "Ada" {
		t.Fatalf("name not trimmed: %q", name)
	}
	for _, bad := range []string{"", "   ", "a\nb", "x\x7f"} {
		if _, err := validateName(bad); err == nil {
			t.Fatalf("expected rejection of %q", bad)
		}
	}
	long := make([]rune, maxNameLength+1)
	for i := range long {
		long[i] = 'x'
	}
	if _, err := validateName(string(long)); err == nil {
		t.Fatalf("expected rejection of overlong name")
	}
}
