package intake

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"plumbing_portal_backend/internal/requests/transport"
	"plumbing_portal_backend/platform/apperr"
	"plumbing_portal_backend/platform/logger"
)

type fakeCompletionClient struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompletionClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestParseFollowUpsNumberedLines(t *testing.T) {
	reply := "1. What is the pipe material?\n2. When did it start?"

	got := ParseFollowUps(reply)
	want := []string{"What is the pipe material?", "When did it start?"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseFollowUps() = %v, want %v", got, want)
	}
}

func TestParseFollowUpsNoQuestionsPhrase(t *testing.T) {
	replies := []string{
		"No, this is perfect. No additional questions required.",
		"NO ADDITIONAL QUESTIONS REQUIRED",
		"Everything is clear. no additional questions required. 1. ignored anyway",
	}

	for _, reply := range replies {
		got := ParseFollowUps(reply)
		if len(got) != 0 {
			t.Errorf("ParseFollowUps(%q) = %v, want empty", reply, got)
		}
	}
}

func TestParseFollowUpsSkipsUnnumberedAndBlankLines(t *testing.T) {
	reply := "Here are my questions:\n\n1. Is the leak active?\nsome commentary\n  2. Where is the shutoff valve?\n\n- not numbered\n"

	got := ParseFollowUps(reply)
	want := []string{"Is the leak active?", "Where is the shutoff valve?"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseFollowUps() = %v, want %v", got, want)
	}
}

func TestParseFollowUpsEmptyReply(t *testing.T) {
	if got := ParseFollowUps(""); len(got) != 0 {
		t.Fatalf("ParseFollowUps(\"\") = %v, want empty", got)
	}
}

func TestNeedsFollowUp(t *testing.T) {
	tests := []struct {
		name        string
		category    string
		description string
		want        bool
	}{
		{"known category, plain description", "leak_repair", "water under the sink", false},
		{"other category always asks", "other", "", true},
		{"ambiguous keyword triggers", "drain_cleaning", "it makes a weird noise", true},
		{"keyword match is case-insensitive", "drain_cleaning", "Not Sure what is wrong", true},
		{"keyword inside word counts", "fixture_install", "intermittently dripping", true},
		{"empty description, known category", "water_heater", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsFollowUp(tt.category, tt.description); got != tt.want {
				t.Errorf("NeedsFollowUp(%q, %q) = %v, want %v", tt.category, tt.description, got, tt.want)
			}
		})
	}
}

func TestFollowUpQuestionsShortCircuitSkipsCompletionCall(t *testing.T) {
	client := &fakeCompletionClient{reply: "1. Should not be asked"}
	orch := New(client, logger.New("test"))

	got, err := orch.FollowUpQuestions(context.Background(), nil, "leak_repair", "dripping faucet")
	if err != nil {
		t.Fatalf("FollowUpQuestions() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("FollowUpQuestions() = %v, want empty", got)
	}
	if client.calls != 0 {
		t.Fatalf("completion client called %d times, want 0", client.calls)
	}
}

func TestFollowUpQuestionsParsesReply(t *testing.T) {
	client := &fakeCompletionClient{reply: "1. What is the pipe material?\n2. When did it start?"}
	orch := New(client, logger.New("test"))

	answers := []transport.ClarifyingAnswer{
		{Question: "Where is the problem?", Answer: "Kitchen"},
	}

	got, err := orch.FollowUpQuestions(context.Background(), answers, "other", "")
	if err != nil {
		t.Fatalf("FollowUpQuestions() error = %v", err)
	}

	want := []string{"What is the pipe material?", "When did it start?"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FollowUpQuestions() = %v, want %v", got, want)
	}
	if client.calls != 1 {
		t.Fatalf("completion client called %d times, want 1", client.calls)
	}
}

func TestFollowUpQuestionsUpstreamError(t *testing.T) {
	client := &fakeCompletionClient{err: errors.New("connection refused")}
	orch := New(client, logger.New("test"))

	_, err := orch.FollowUpQuestions(context.Background(), nil, "other", "")
	if err == nil {
		t.Fatal("FollowUpQuestions() error = nil, want upstream error")
	}
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("FollowUpQuestions() error kind = %v, want KindUpstream", apperr.GetKind(err))
	}
}
