package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/formflow/pkg/domain"
)

// editorRoutes mounts the editing endpoints below /forms/{formID}.
func (s *Server) editorRoutes(r chi.Router) {
	r.Delete("/", s.DeleteForm)
	r.Patch("/settings", s.UpdateSettings)

	r.Post("/nodes", s.AddNode)
	r.Route("/nodes/{nodeID}", func(r chi.Router) {
		r.Patch("/", s.UpdateNode)
		r.Delete("/", s.DeleteNode)
		r.Post("/duplicate", s.DuplicateNode)
		r.Put("/position", s.MoveNode)
	})

	r.Post("/edges", s.Connect)
	r.Route("/edges/{edgeID}", func(r chi.Router) {
		r.Patch("/", s.UpdateEdge)
		r.Delete("/", s.DeleteEdge)
		r.Post("/preview", s.PreviewEdge)
	})
}

type createFormRequest struct {
	ID string `json:"id"`
}

// CreateForm handles the POST /forms request.
func (s *Server) CreateForm(w http.ResponseWriter, r *http.Request) {
	var body createFormRequest
	if r.ContentLength != 0 {
		if err := s.decode(r, "CreateFormRequest", &body); err != nil {
			s.writeError(w, err)
			return
		}
	}
	form, err := s.editor.Create(r.Context(), body.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, form)
}

// DeleteForm handles the DELETE /forms/{formID} request.
func (s *Server) DeleteForm(w http.ResponseWriter, r *http.Request) {
	if err := s.editor.Delete(r.Context(), chi.URLParam(r, "formID")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateSettings handles the PATCH /forms/{formID}/settings request.
func (s *Server) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	patch, ok := s.patchBody(w, r)
	if !ok {
		return
	}
	settings, err := s.editor.UpdateSettings(r.Context(), chi.URLParam(r, "formID"), patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type addNodeRequest struct {
	Type domain.QuestionType `json:"type"`
}

// AddNode handles the POST /forms/{formID}/nodes request.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	var body addNodeRequest
	if err := s.decode(r, "AddNodeRequest", &body); err != nil {
		s.writeError(w, err)
		return
	}
	node, err := s.editor.AddNode(r.Context(), chi.URLParam(r, "formID"), body.Type)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

// UpdateNode handles the PATCH /forms/{formID}/nodes/{nodeID} request.
// The body holds the question data fields to change.
func (s *Server) UpdateNode(w http.ResponseWriter, r *http.Request) {
	patch, ok := s.patchBody(w, r)
	if !ok {
		return
	}
	node, err := s.editor.UpdateNode(r.Context(), chi.URLParam(r, "formID"), chi.URLParam(r, "nodeID"), patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// DeleteNode handles the DELETE /forms/{formID}/nodes/{nodeID} request.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := s.editor.DeleteNode(r.Context(), chi.URLParam(r, "formID"), chi.URLParam(r, "nodeID")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DuplicateNode handles the POST /forms/{formID}/nodes/{nodeID}/duplicate request.
func (s *Server) DuplicateNode(w http.ResponseWriter, r *http.Request) {
	node, err := s.editor.DuplicateNode(r.Context(), chi.URLParam(r, "formID"), chi.URLParam(r, "nodeID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

// MoveNode handles the PUT /forms/{formID}/nodes/{nodeID}/position request.
func (s *Server) MoveNode(w http.ResponseWriter, r *http.Request) {
	var pos domain.Position
	if err := s.decode(r, "Position", &pos); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.editor.MoveNode(r.Context(), chi.URLParam(r, "formID"), chi.URLParam(r, "nodeID"), pos); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type connectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Connect handles the POST /forms/{formID}/edges request.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	var body connectRequest
	if err := s.decode(r, "ConnectRequest", &body); err != nil {
		s.writeError(w, err)
		return
	}
	edge, err := s.editor.Connect(r.Context(), chi.URLParam(r, "formID"), body.Source, body.Target)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, edge)
}

// UpdateEdge handles the PATCH /forms/{formID}/edges/{edgeID} request.
// The body holds the edge data fields to change.
func (s *Server) UpdateEdge(w http.ResponseWriter, r *http.Request) {
	patch, ok := s.patchBody(w, r)
	if !ok {
		return
	}
	edge, err := s.editor.UpdateEdge(r.Context(), chi.URLParam(r, "formID"), chi.URLParam(r, "edgeID"), patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, edge)
}

// DeleteEdge handles the DELETE /forms/{formID}/edges/{edgeID} request.
func (s *Server) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := s.editor.DeleteEdge(r.Context(), chi.URLParam(r, "formID"), chi.URLParam(r, "edgeID")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type previewRequest struct {
	Answers domain.Answers `json:"answers"`
}

// PreviewEdge handles the POST /forms/{formID}/edges/{edgeID}/preview request.
func (s *Server) PreviewEdge(w http.ResponseWriter, r *http.Request) {
	var body previewRequest
	if err := s.decode(r, "PreviewRequest", &body); err != nil {
		s.writeError(w, err)
		return
	}
	active, err := s.editor.PreviewEdge(r.Context(), chi.URLParam(r, "formID"), chi.URLParam(r, "edgeID"), body.Answers)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": active})
}

func (s *Server) patchBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var patch map[string]any
	if err := s.decode(r, "", &patch); err != nil {
		s.writeError(w, err)
		return nil, false
	}
	if patch == nil {
		patch = map[string]any{}
	}
	return patch, true
}
