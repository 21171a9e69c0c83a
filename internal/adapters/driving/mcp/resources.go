package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for studyhall resources.
	uriScheme = "studyhall://"

	notesSuffix   = "/notes"
	historySuffix = "/history"

	// historyResourceLimit bounds the turns returned by the history resource.
	historyResourceLimit = 100
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Notes != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "users/{userId}/subjects/{subjectId}" + notesSuffix,
			Name:        "subject-notes",
			Description: "Notes uploaded to a subject",
			MIMEType:    "application/json",
		}, s.handleNotesResource)
	}

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "users/{userId}/subjects/{subjectId}" + historySuffix,
		Name:        "subject-history",
		Description: "Recent conversation turns for a subject, oldest first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)
}

// handleNotesResource lists the notes of a subject.
func (s *Server) handleNotesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Notes == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	userID, subjectID := parseSubjectURI(req.Params.URI, notesSuffix)
	if subjectID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	key, err := s.key(userID, subjectID)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	notes, err := s.ports.Notes.List(ctx, key.UserID, key.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}

	type noteInfo struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		MIMEType   string `json:"mime_type"`
		ByteLength int    `json:"byte_length"`
		Ready      bool   `json:"ready"`
		CreatedAt  string `json:"created_at"`
	}

	infos := make([]noteInfo, len(notes))
	for i := range notes {
		infos[i] = noteInfo{
			ID:         notes[i].ID,
			Name:       notes[i].DisplayName,
			MIMEType:   notes[i].MIMEType,
			ByteLength: notes[i].ByteLength,
			Ready:      notes[i].HasUsableText(),
			CreatedAt:  notes[i].CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	return jsonResource(req.Params.URI, infos)
}

// handleHistoryResource returns the recent conversation of a subject.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	userID, subjectID := parseSubjectURI(req.Params.URI, historySuffix)
	if subjectID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	key, err := s.key(userID, subjectID)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	turns, err := s.ports.Chat.History(ctx, key, historyResourceLimit)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	type turnInfo struct {
		Role      string `json:"role"`
		Content   string `json:"content"`
		Timestamp string `json:"timestamp"`
	}

	infos := make([]turnInfo, len(turns))
	for i := range turns {
		infos[i] = turnInfo{
			Role:      turns[i].Role.String(),
			Content:   turns[i].Content,
			Timestamp: turns[i].Timestamp.UTC().Format(time.RFC3339Nano),
		}
	}

	return jsonResource(req.Params.URI, infos)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// parseSubjectURI extracts the user and subject from a URI like
// studyhall://users/{userId}/subjects/{subjectId}{suffix}.
// Both are empty when the URI does not match.
func parseSubjectURI(uri, suffix string) (userID, subjectID string) {
	const prefix = uriScheme + "users/"

	rest, ok := strings.CutPrefix(uri, prefix)
	if !ok {
		return "", ""
	}
	rest, ok = strings.CutSuffix(rest, suffix)
	if !ok {
		return "", ""
	}
	userID, subjectID, ok = strings.Cut(rest, "/subjects/")
	if !ok || userID == "" || subjectID == "" || strings.Contains(subjectID, "/") {
		return "", ""
	}
	return userID, subjectID
}
