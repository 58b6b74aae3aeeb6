package collab

import (
	"context"
	"testing"

	"github.com/trigoo007/cagcore/pkg/cag/types"
	"github.com/trigoo007/cagcore/pkg/fsx/fsxlocal"
	"github.com/trigoo007/cagcore/pkg/kernel"
)

func newTestFS(t *testing.T) *fsxlocal.LocalFileSystem {
	t.Helper()
	fs, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("local filesystem: %v", err)
	}
	return fs
}

func TestFSConversationStore_GetMissingReturnsEmptyConversation(t *testing.T) {
	s := NewFSConversationStore(newTestFS(t), "")
	id := kernel.NewConversationID("c1")
	conv, err := s.GetConversation(context.Background(), id)
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if conv.ID != id || conv.Messages != nil {
		t.Fatalf("expected an empty conversation with the id set, got %+v", conv)
	}
}

func TestFSConversationStore_AppendThenGetRoundTrip(t *testing.T) {
	s := NewFSConversationStore(newTestFS(t), "")
	ctx := context.Background()
	id := kernel.NewConversationID("c1")

	if err := s.AppendMessage(ctx, id, types.ConversationMessage{Role: "user", Content: "hola"}); err != nil {
		t.Fatalf("append 1: %v", err)
	}
	if err := s.AppendMessage(ctx, id, types.ConversationMessage{Role: "assistant", Content: "hola, ¿en qué te ayudo?"}); err != nil {
		t.Fatalf("append 2: %v", err)
	}

	conv, err := s.GetConversation(ctx, id)
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %+v", conv.Messages)
	}
	if conv.Messages[0].Content != "hola" || conv.Messages[1].Role != "assistant" {
		t.Fatalf("expected messages preserved in order, got %+v", conv.Messages)
	}
}

func TestFSDocumentProcessor_GetMissingReturnsNil(t *testing.T) {
	p := NewFSDocumentProcessor(newTestFS(t), "")
	docs, err := p.GetConversationDocuments(context.Background(), kernel.NewConversationID("c1"))
	if err != nil {
		t.Fatalf("get documents: %v", err)
	}
	if docs != nil {
		t.Fatalf("expected nil documents for a missing index, got %+v", docs)
	}
}

func TestFSDocumentProcessor_RegisterThenSearch(t *testing.T) {
	p := NewFSDocumentProcessor(newTestFS(t), "")
	ctx := context.Background()
	id := kernel.NewConversationID("c1")

	if err := p.RegisterDocument(ctx, id, types.DocumentRef{ID: "1", Name: "manual", Content: "Este manual explica cómo usar golang"}); err != nil {
		t.Fatalf("register 1: %v", err)
	}
	if err := p.RegisterDocument(ctx, id, types.DocumentRef{ID: "2", Name: "receta", Content: "receta de pastel de chocolate"}); err != nil {
		t.Fatalf("register 2: %v", err)
	}

	results, err := p.SearchDocuments(ctx, id, "golang")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "1" {
		t.Fatalf("expected only the matching document, got %+v", results)
	}
}

func TestFSDocumentProcessor_SearchEmptyQueryReturnsAll(t *testing.T) {
	p := NewFSDocumentProcessor(newTestFS(t), "")
	ctx := context.Background()
	id := kernel.NewConversationID("c1")

	if err := p.RegisterDocument(ctx, id, types.DocumentRef{ID: "1", Name: "a"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	results, err := p.SearchDocuments(ctx, id, "   ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected all documents returned for an empty query, got %+v", results)
	}
}

func TestFSDocumentProcessor_SearchRanksByHitCount(t *testing.T) {
	p := NewFSDocumentProcessor(newTestFS(t), "")
	ctx := context.Background()
	id := kernel.NewConversationID("c1")

	if err := p.RegisterDocument(ctx, id, types.DocumentRef{ID: "low", Content: "golang es un lenguaje"}); err != nil {
		t.Fatalf("register low: %v", err)
	}
	if err := p.RegisterDocument(ctx, id, types.DocumentRef{ID: "high", Content: "golang golang golang es el mejor lenguaje golang"}); err != nil {
		t.Fatalf("register high: %v", err)
	}

	results, err := p.SearchDocuments(ctx, id, "golang")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 || results[0].ID != "high" {
		t.Fatalf("expected the higher hit-count document ranked first, got %+v", results)
	}
}
