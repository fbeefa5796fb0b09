package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/svaldes/parlante/internal/domain"
)

func newTestStore(t *testing.T) History {
	t.Helper()

	st, err := NewSQLite(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func appendPair(t *testing.T, st History, speaker, userText, assistantText string) {
	t.Helper()

	err := st.AppendTurn(context.Background(), speaker,
		domain.Message{Role: domain.RoleUser, Content: userText},
		domain.Message{Role: domain.RoleAssistant, Content: assistantText},
	)
	if err != nil {
		t.Fatalf("AppendTurn(%q) failed: %v", speaker, err)
	}
}

func TestAppendTurnRoundTrip(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	appendPair(t, st, "Pablo", "hola", "hola Pablo")

	msgs, err := st.ReadAll(context.Background(), "pablo")
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != domain.RoleUser || msgs[0].Content != "hola" {
		t.Errorf("unexpected first message: %+v", msgs[0])
	}
	if msgs[1].Role != domain.RoleAssistant || msgs[1].Content != "hola Pablo" {
		t.Errorf("unexpected second message: %+v", msgs[1])
	}
	if msgs[0].ID == "" || msgs[1].ID == "" || msgs[0].ID == msgs[1].ID {
		t.Errorf("expected distinct non-empty message IDs, got %q and %q", msgs[0].ID, msgs[1].ID)
	}
}

func TestReadAllIsIdempotent(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	appendPair(t, st, "ana", "uno", "dos")
	appendPair(t, st, "ana", "tres", "cuatro")

	first, err := st.ReadAll(context.Background(), "ana")
	if err != nil {
		t.Fatalf("first ReadAll failed: %v", err)
	}
	second, err := st.ReadAll(context.Background(), "ana")
	if err != nil {
		t.Fatalf("second ReadAll failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("read lengths differ: %d != %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("message %d differs between reads: %+v != %+v", i, first[i], second[i])
		}
	}
}

func TestReadAllUnknownSpeakerIsEmpty(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	msgs, err := st.ReadAll(context.Background(), "nadie")
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty log, got %d messages", len(msgs))
	}
}

func TestSpeakerLogsAreIndependent(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	appendPair(t, st, "pablo", "mi color favorito es azul", "anotado")

	before, err := st.ReadAll(context.Background(), "pablo")
	if err != nil {
		t.Fatalf("ReadAll(pablo) failed: %v", err)
	}

	appendPair(t, st, "ana", "hola", "hola Ana")

	after, err := st.ReadAll(context.Background(), "pablo")
	if err != nil {
		t.Fatalf("ReadAll(pablo) after append failed: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("appending to ana changed pablo's log: %d -> %d", len(before), len(after))
	}
}

func TestListSpeakersDeduplicates(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	appendPair(t, st, "Ana", "uno", "dos")
	appendPair(t, st, "ana", "tres", "cuatro")
	appendPair(t, st, "Pablo", "hola", "hola")

	speakers, err := st.ListSpeakers(context.Background())
	if err != nil {
		t.Fatalf("ListSpeakers failed: %v", err)
	}
	if len(speakers) != 2 {
		t.Fatalf("expected 2 speakers, got %v", speakers)
	}
	if speakers[0] != "ana" || speakers[1] != "pablo" {
		t.Errorf("unexpected speakers: %v", speakers)
	}
}

func TestNormalizedNamesShareOneLog(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	appendPair(t, st, "María", "quiero saber el clima", "claro")

	msgs, err := st.ReadAll(context.Background(), "maria")
	if err != nil {
		t.Fatalf("ReadAll(maria) failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected María and maria to share a log, got %d messages", len(msgs))
	}

	speakers, err := st.ListSpeakers(context.Background())
	if err != nil {
		t.Fatalf("ListSpeakers failed: %v", err)
	}
	if len(speakers) != 1 || speakers[0] != "maria" {
		t.Errorf("expected single speaker maria, got %v", speakers)
	}
}
