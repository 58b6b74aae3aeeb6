package collab

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/trigoo007/cagcore/pkg/cag/types"
	"github.com/trigoo007/cagcore/pkg/errx"
	"github.com/trigoo007/cagcore/pkg/fsx"
	"github.com/trigoo007/cagcore/pkg/kernel"
	"github.com/trigoo007/cagcore/pkg/logx"
)

// FSConversationStore is a minimal fsx-backed ConversationStore, good
// enough for the CLI demo and for tests that need a concrete (not mocked)
// collaborator. It is not a production chat transcript system.
type FSConversationStore struct {
	fs  fsx.FileSystem
	dir string
}

func NewFSConversationStore(fs fsx.FileSystem, dir string) *FSConversationStore {
	if dir == "" {
		dir = "collab/conversations"
	}
	return &FSConversationStore{fs: fs, dir: dir}
}

func (s *FSConversationStore) path(id kernel.ConversationID) string {
	return s.fs.Join(s.dir, id.String()+".json")
}

func (s *FSConversationStore) GetConversation(ctx context.Context, id kernel.ConversationID) (Conversation, error) {
	path := s.path(id)
	exists, err := s.fs.Exists(ctx, path)
	if err != nil {
		return Conversation{}, errx.Wrap(err, "failed to check conversation existence", errx.TypeExternal)
	}
	if !exists {
		return Conversation{ID: id, Messages: nil}, nil
	}

	data, err := s.fs.ReadFile(ctx, path)
	if err != nil {
		return Conversation{}, collabErrors.NewWithCause(ErrStorageFailure, err)
	}

	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		logx.Errorf("collab: corrupt conversation file %s: %v", path, err)
		return Conversation{ID: id}, nil
	}
	return conv, nil
}

// AppendMessage records a new turn, used by the CLI demo to build up a
// transcript across invocations.
func (s *FSConversationStore) AppendMessage(ctx context.Context, id kernel.ConversationID, msg types.ConversationMessage) error {
	conv, err := s.GetConversation(ctx, id)
	if err != nil {
		return err
	}
	conv.ID = id
	conv.Messages = append(conv.Messages, msg)

	data, err := json.Marshal(conv)
	if err != nil {
		return errx.Wrap(err, "failed to marshal conversation", errx.TypeInternal)
	}
	if err := s.fs.WriteFile(ctx, s.path(id), data); err != nil {
		return collabErrors.NewWithCause(ErrStorageFailure, err)
	}
	return nil
}

// FSDocumentProcessor is a minimal fsx-backed DocumentProcessor: documents
// are plain text files registered under a conversation's directory. Real
// parsing (PDF/DOCX/XLSX) remains an external, unimplemented collaborator.
type FSDocumentProcessor struct {
	fs  fsx.FileSystem
	dir string
}

func NewFSDocumentProcessor(fs fsx.FileSystem, dir string) *FSDocumentProcessor {
	if dir == "" {
		dir = "collab/documents"
	}
	return &FSDocumentProcessor{fs: fs, dir: dir}
}

type documentIndex struct {
	Documents []storedDocument `json:"documents"`
}

// storedDocument keeps a document's Content in the index file, which
// types.DocumentRef alone leaves out of its JSON form.
type storedDocument struct {
	types.DocumentRef
	Content string `json:"content"`
}

func (p *FSDocumentProcessor) indexPath(id kernel.ConversationID) string {
	return p.fs.Join(p.dir, id.String()+".json")
}

func (p *FSDocumentProcessor) GetConversationDocuments(ctx context.Context, id kernel.ConversationID) ([]types.DocumentRef, error) {
	path := p.indexPath(id)
	exists, err := p.fs.Exists(ctx, path)
	if err != nil {
		return nil, errx.Wrap(err, "failed to check document index", errx.TypeExternal)
	}
	if !exists {
		return nil, nil
	}

	data, err := p.fs.ReadFile(ctx, path)
	if err != nil {
		return nil, collabErrors.NewWithCause(ErrStorageFailure, err)
	}

	var idx documentIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		logx.Errorf("collab: corrupt document index %s: %v", path, err)
		return nil, nil
	}
	docs := make([]types.DocumentRef, 0, len(idx.Documents))
	for _, sd := range idx.Documents {
		doc := sd.DocumentRef
		doc.Content = sd.Content
		docs = append(docs, doc)
	}
	return docs, nil
}

// RegisterDocument adds a document (already extracted to plain text by an
// external processor) to a conversation's index.
func (p *FSDocumentProcessor) RegisterDocument(ctx context.Context, id kernel.ConversationID, doc types.DocumentRef) error {
	docs, err := p.GetConversationDocuments(ctx, id)
	if err != nil {
		return err
	}
	docs = append(docs, doc)

	stored := make([]storedDocument, 0, len(docs))
	for _, d := range docs {
		stored = append(stored, storedDocument{DocumentRef: d, Content: d.Content})
	}
	data, err := json.Marshal(documentIndex{Documents: stored})
	if err != nil {
		return errx.Wrap(err, "failed to marshal document index", errx.TypeInternal)
	}
	if err := p.fs.WriteFile(ctx, p.indexPath(id), data); err != nil {
		return collabErrors.NewWithCause(ErrStorageFailure, err)
	}
	return nil
}

func (p *FSDocumentProcessor) SearchDocuments(ctx context.Context, id kernel.ConversationID, query string) ([]types.DocumentRef, error) {
	docs, err := p.GetConversationDocuments(ctx, id)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return docs, nil
	}

	type scored struct {
		doc   types.DocumentRef
		score int
	}
	var matches []scored
	for _, d := range docs {
		content := strings.ToLower(d.Content + " " + d.Summary + " " + d.Name)
		score := strings.Count(content, query)
		if score > 0 {
			matches = append(matches, scored{d, score})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].score > matches[j].score })

	out := make([]types.DocumentRef, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.doc)
	}
	return out, nil
}
