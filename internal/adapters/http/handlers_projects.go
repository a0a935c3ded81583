package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"vitrine/internal/application/orchestrators"
)

// projectInput is the JSON shape shared by create and update.
type projectInput struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	FullDescription string   `json:"fullDescription"`
	Image           string   `json:"image"`
	Tech            []string `json:"tech"`
	Category        string   `json:"category"`
	Repository      string   `json:"repository"`
	LiveDemo        string   `json:"liveDemo"`
	Images          []string `json:"images"`
	Features        []string `json:"features"`
	Challenges      []string `json:"challenges"`
	Results         []string `json:"results"`
}

func (in projectInput) toSaveInput(projectID string) orchestrators.SaveProjectInput {
	return orchestrators.SaveProjectInput{
		ProjectID:       projectID,
		Title:           in.Title,
		Description:     in.Description,
		FullDescription: in.FullDescription,
		Image:           in.Image,
		Tech:            in.Tech,
		Category:        in.Category,
		Repository:      in.Repository,
		LiveDemo:        in.LiveDemo,
		Images:          in.Images,
		Features:        in.Features,
		Challenges:      in.Challenges,
		Results:         in.Results,
	}
}

func saveProjectDeps() orchestrators.SaveProjectDeps {
	return orchestrators.SaveProjectDeps{
		ProjectStore: stores.ProjectStore,
		GenerateID:   func() string { return uuid.New().String() },
		Now:          time.Now,
	}
}

// handleProjects handles GET /api/projects — the public portfolio list.
func handleProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	projects, err := stores.ProjectStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if projects == nil {
		w.Write([]byte("[]"))
		return
	}
	json.NewEncoder(w).Encode(projects)
}

// handleProjectDetail handles GET /api/projects/{id}.
func handleProjectDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/projects/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	p, err := stores.ProjectStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "project not found", http.StatusNotFound)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleAdminProjects handles POST /api/admin/projects (create).
func handleAdminProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input projectInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	p, err := orchestrators.ExecuteSaveProject(r.Context(), input.toSaveInput(""), saveProjectDeps())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleAdminProjectDetail handles PUT and DELETE on /api/admin/projects/{id}.
func handleAdminProjectDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/admin/projects/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case "PUT":
		var input projectInput
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		p, err := orchestrators.ExecuteSaveProject(r.Context(), input.toSaveInput(id), saveProjectDeps())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, p)

	case "DELETE":
		if err := orchestrators.ExecuteDeleteProject(r.Context(), id, orchestrators.DeleteProjectDeps{
			ProjectStore: stores.ProjectStore,
		}); err != nil {
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
