// internal/app/features/cases/images.go
package cases

import (
	"net/http"
	"time"

	"github.com/findxvision/casewatch/internal/app/features/respond"
	"github.com/findxvision/casewatch/internal/app/storage"
	"github.com/findxvision/casewatch/internal/app/store/audit"
	sysauth "github.com/findxvision/casewatch/internal/app/system/auth"
	"github.com/findxvision/casewatch/internal/app/system/timeouts"
	"github.com/findxvision/casewatch/internal/domain/models"
	"go.uber.org/zap"
)

// ServeUploadImage handles POST /cases/{caseID}/images (multipart).
// The file part is "image"; "is_profile" marks the profile photo.
func (h *Handler) ServeUploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := sysauth.CurrentIdentity(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	caseID, err := caseIDParam(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	if err := r.ParseMultipartForm(storage.MaxImageSize); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "upload case image")
	defer cancel()

	contentType := header.Header.Get("Content-Type")
	objectKey, url, err := h.Images.Upload(ctx, caseID.Hex(), header.Filename, contentType, header.Size, file)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	img := models.CaseImage{
		URL:            url,
		ObjectKey:      objectKey,
		Filename:       header.Filename,
		UploadedAt:     time.Now(),
		UploadedBy:     id.ActorID,
		IsProfileImage: r.FormValue("is_profile") == "true",
	}
	c, err := h.Svc.AttachImage(ctx, id, caseID, img)
	if err != nil {
		// The record did not land; do not leave the object orphaned.
		if rerr := h.Images.Remove(ctx, objectKey); rerr != nil {
			h.Log.Warn("failed to remove orphaned image", zap.String("object_key", objectKey), zap.Error(rerr))
		}
		h.respondError(ctx, w, r, id, audit.ActionImageUploaded, caseID, err)
		return
	}

	h.Audit.CaseAction(ctx, r, id.ActorID, audit.ActionImageUploaded, caseID, map[string]any{
		"object_key": objectKey,
	})
	respond.Created(w, c)
}
