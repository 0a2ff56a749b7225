// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package institution

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/osg-htc/institutions/internal/platform/middleware"
	requestutil "github.com/osg-htc/institutions/internal/platform/request"
	"github.com/osg-htc/institutions/internal/platform/respond"
	"github.com/osg-htc/institutions/internal/platform/validate"
	"github.com/osg-htc/institutions/pkg/pointer"
	"github.com/osg-htc/institutions/pkg/slice"
)

// Handler implements the HTTP layer for the institution catalog.
type Handler struct {
	service *Service
}

// NewHandler constructs a new institution [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with the institution endpoints.
//
// Reads are anonymous. Writes require the author subject set by [middleware.Author].
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)

	router.Group(func(writes chi.Router) {
		writes.Use(middleware.RequireAuthor)
		writes.Post("/", handler.create)
		writes.Put("/{id}", handler.update)
		writes.Delete("/{id}", handler.invalidate)
	})

	return router
}

// # Wire Format

// WriteRequest is the JSON body of create and update.
//
// Server-computed fields (id, metadata, audit) may be echoed back by clients
// and are ignored.
type WriteRequest struct {
	Name      string   `json:"name"      validate:"required,max=255"`
	RORID     *string  `json:"ror_id"`
	UnitID    *string  `json:"unitid"`
	Latitude  *float64 `json:"latitude"  validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
	State     *string  `json:"state"`
}

// Fields converts the request into the service write model.
func (body WriteRequest) Fields() Fields {
	return Fields{
		Name:      body.Name,
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
		State:     body.State,
		Identifiers: DesiredIdentifiers{
			RORID:  pointer.Val(body.RORID),
			UnitID: pointer.Val(body.UnitID),
		},
	}
}

// View is the JSON representation of an institution.
type View struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Valid     bool     `json:"valid"`
	RORID     *string  `json:"ror_id"`
	UnitID    *string  `json:"unitid"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	State     *string  `json:"state"`

	IPEDSMetadata    *IPEDSView    `json:"ipeds_metadata"`
	CarnegieMetadata *CarnegieView `json:"carnegie_metadata"`

	Created   time.Time  `json:"created"`
	CreatedBy string     `json:"created_by"`
	Updated   *time.Time `json:"updated,omitempty"`
	UpdatedBy *string    `json:"updated_by,omitempty"`
}

// IPEDSView is the read-only IPEDS block of a [View].
type IPEDSView struct {
	WebsiteAddress  *string `json:"website_address"`
	HBCU            bool    `json:"historically_black_college_or_university"`
	Tribal          bool    `json:"tribal_college_or_university"`
	ProgramLength   *string `json:"program_length"`
	Control         *string `json:"control"`
	State           *string `json:"state"`
	InstitutionSize *string `json:"institution_size"`
}

// CarnegieView is the read-only Carnegie block of a [View].
type CarnegieView struct {
	Classification2021 *string `json:"classification2021"`
	Classification2025 *string `json:"classification2025"`
}

// NewView renders inst for clients.
func NewView(inst Institution) View {
	view := View{
		ID:        inst.PublicID,
		Name:      inst.Name,
		Valid:     inst.Valid,
		RORID:     pointer.NonEmpty(inst.IdentifierValue(KindRORID)),
		UnitID:    pointer.NonEmpty(inst.IdentifierValue(KindUnitID)),
		Latitude:  inst.Latitude,
		Longitude: inst.Longitude,
		State:     inst.State,
		Created:   inst.CreatedAt,
		CreatedBy: inst.CreatedBy,
		Updated:   inst.UpdatedAt,
		UpdatedBy: inst.UpdatedBy,
	}

	if unitID, ok := inst.Identifier(KindUnitID); ok {
		if ipeds := unitID.IPEDS; ipeds != nil {
			view.IPEDSMetadata = &IPEDSView{
				WebsiteAddress:  pointer.NonEmpty(ipeds.Website),
				HBCU:            ipeds.HBCU,
				Tribal:          ipeds.Tribal,
				ProgramLength:   pointer.NonEmpty(string(ipeds.ProgramLength)),
				Control:         pointer.NonEmpty(string(ipeds.Control)),
				State:           pointer.NonEmpty(ipeds.State),
				InstitutionSize: pointer.NonEmpty(string(ipeds.InstitutionSize)),
			}
		}
		if carnegie := unitID.Carnegie; carnegie != nil {
			view.CarnegieMetadata = &CarnegieView{
				Classification2021: carnegie.Classification2021,
				Classification2025: carnegie.Classification2025,
			}
		}
	}

	return view
}

// # Endpoints

/*
GET /api/v1/institutions.

Response:
  - 200: []View: Valid institutions ordered by name
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	institutions, err := handler.service.ListValid(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	views := slice.Map(institutions, NewView)
	if views == nil {
		views = []View{}
	}
	respond.OK(writer, views)
}

/*
GET /api/v1/institutions/{id}.

Description: Soft-deleted institutions are returned with valid=false.

Response:
  - 200: View
  - 404: ErrNotFound: Unknown id
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	inst, err := handler.service.Get(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, NewView(inst))
}

/*
POST /api/v1/institutions.

Description: Creates an institution, or reactivates the soft-deleted one with the same name.

Response:
  - 201: View: Created
  - 200: View: Reactivated
  - 400: Validation errors (bad ror_id prefix, unknown unitid, missing name)
  - 401: Missing author header
  - 409: Name or identifier already taken; retryable on a public id race
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	body, ok := handler.decode(writer, request)
	if !ok {
		return
	}

	inst, reactivated, err := handler.service.Create(request.Context(), body.Fields(), requestutil.Author(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if reactivated {
		respond.OK(writer, NewView(inst))
		return
	}
	respond.Created(writer, NewView(inst))
}

/*
PUT /api/v1/institutions/{id}.

Description: Full replacement of the writable fields. Omitted identifiers are removed.

Response:
  - 200: View
  - 400, 401, 404, 409
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	body, ok := handler.decode(writer, request)
	if !ok {
		return
	}

	inst, err := handler.service.Update(request.Context(), requestutil.Param(request, "id"), body.Fields(), requestutil.Author(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, NewView(inst))
}

/*
DELETE /api/v1/institutions/{id}.

Response:
  - 204: Invalidated
  - 401, 404
*/
func (handler *Handler) invalidate(writer http.ResponseWriter, request *http.Request) {
	err := handler.service.Invalidate(request.Context(), requestutil.Param(request, "id"), requestutil.Author(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) decode(writer http.ResponseWriter, request *http.Request) (WriteRequest, bool) {
	var body WriteRequest
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return WriteRequest{}, false
	}
	if err := validate.Struct(body); err != nil {
		respond.Error(writer, request, err)
		return WriteRequest{}, false
	}
	return body, true
}
