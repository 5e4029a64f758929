package http

import (
	"chesslines/internal/server/core"
	"chesslines/internal/server/notation"
	"chesslines/internal/server/service"
)

func lineResponse(l *service.Line) core.LineResponse {
	return core.LineResponse{
		LineID:    l.ID,
		Title:     l.Title,
		PGN:       l.PGN,
		FEN:       l.FEN,
		FinalFEN:  l.FinalFEN,
		Moves:     l.Moves,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
		Skipped:   skippedResponse(l.Skipped),
	}
}

func classroomResponse(c *service.Classroom) core.ClassroomResponse {
	resp := core.ClassroomResponse{
		ClassroomID: c.ID,
		Title:       c.Title,
		Description: c.Description,
		Tags:        c.Tags,
		Visibility:  c.Visibility,
		LineCount:   c.LineCount,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if c.Lines != nil {
		resp.Lines = make([]core.LineResponse, 0, len(c.Lines))
		for _, l := range c.Lines {
			resp.Lines = append(resp.Lines, lineResponse(l))
		}
	}
	return resp
}

func boardResponse(b *service.Board) core.BoardResponse {
	return core.BoardResponse{FEN: b.FEN, Board: b.Diagram, LegalMoves: b.LegalMoves}
}

func skippedResponse(skipped []notation.SkippedToken) []core.SkippedToken {
	if len(skipped) == 0 {
		return nil
	}
	out := make([]core.SkippedToken, 0, len(skipped))
	for _, s := range skipped {
		reason := ""
		if s.Err != nil {
			reason = s.Err.Error()
		}
		out = append(out, core.SkippedToken{Index: s.Index, Token: s.Token, Reason: reason})
	}
	return out
}

func treeResponse(v *service.TreeView) core.TreeResponse {
	nodes := make([]core.NodeResponse, 0, len(v.Nodes))
	for _, n := range v.Nodes {
		var parent *string
		if n.ParentID != "" {
			p := n.ParentID
			parent = &p
		}
		nodes = append(nodes, core.NodeResponse{
			ID:            n.ID,
			FEN:           n.FEN,
			SAN:           n.SAN,
			UCI:           n.UCI,
			ParentID:      parent,
			ChildrenIDs:   n.ChildrenIDs,
			Comment:       n.Comment,
			VariationName: n.VariationName,
			NAGs:          n.NAGs,
		})
	}

	return core.TreeResponse{
		SessionID:  v.SessionID,
		LineID:     v.LineID,
		RootID:     v.RootID,
		CursorID:   v.CursorID,
		Nodes:      nodes,
		MainLine:   v.MainLine,
		Path:       v.Path,
		Rendered:   v.Rendered,
		Variations: v.Variations,
		Ahead:      v.Ahead,
		Skipped:    skippedResponse(v.Skipped),
		Dirty:      v.Dirty,
	}
}

func practiceResponse(v *service.PracticeView) core.PracticeResponse {
	resp := core.PracticeResponse{
		SessionID: v.SessionID,
		LineID:    v.LineID,
		Color:     v.Color.String(),
		State:     v.State.String(),
		FEN:       v.FEN,
		Turn:      v.Turn,
		Moves:     v.Moves,
		Progress:  v.Progress,
		Mistakes:  v.Mistakes,
		Hints:     v.Hints,
		Skips:     v.Skips,
		Hint:      v.Hint,
	}
	if v.Feedback != nil {
		resp.Feedback = &core.FeedbackResponse{
			Correct:  v.Feedback.Correct,
			Played:   v.Feedback.Played,
			Expected: v.Feedback.Expected,
			Reply:    v.Feedback.Reply,
		}
	}
	return resp
}
