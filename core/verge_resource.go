package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Dummy resource is used to support Request interceptors for "low level" session methods like GET, POST etc.
type Dummy struct {
	*VergeResource
}

type DummyRest struct {
	ctx         context.Context
	Session     RESTSession
	resourceMap map[string]VergeResourceAPIWithContext
}

func (rest *DummyRest) GetSession() RESTSession {
	return rest.Session
}

func (rest *DummyRest) GetResourceMap() map[string]VergeResourceAPIWithContext {
	return rest.resourceMap
}

func (rest *DummyRest) GetCtx() context.Context {
	return rest.ctx
}

func (rest *DummyRest) SetCtx(ctx context.Context) {
	rest.ctx = ctx
}

func NewDummy(ctx context.Context, session RESTSession) *Dummy {
	dummy := &Dummy{
		VergeResource: &VergeResource{
			resourceType: "Dummy",
			resourcePath: "",
		},
	}
	rest := &DummyRest{
		ctx:         ctx,
		Session:     session,
		resourceMap: map[string]VergeResourceAPIWithContext{"Dummy": dummy},
	}
	dummy.Rest = rest
	return dummy
}

//  ######################################################
//              VERGE RESOURCES BASE CRUD OPS
//  ######################################################

// VergeResource implements VergeResourceAPI and provides common behavior for managing VergeOS resources.
type VergeResource struct {
	resourcePath string
	resourceType string
	Rest         VergeRest
	mu           *KeyLocker
	parent       any // Reference to the parent resource that embeds this VergeResource
}

func NewVergeResource(resourcePath string, resourceType string, rest VergeRest, parent any) *VergeResource {
	return &VergeResource{
		resourcePath: resourcePath,
		resourceType: resourceType,
		Rest:         rest,
		mu:           NewKeyLocker(),
		parent:       parent,
	}
}

// Session returns the current VergeSession associated with the resource.
func (e *VergeResource) Session() RESTSession {
	return e.Rest.GetSession()
}

func (e *VergeResource) GetResourceType() string {
	return e.resourceType
}

func (e *VergeResource) GetResourcePath() string {
	path := e.resourcePath
	trimmed := strings.Trim(path, "/")
	return "/" + trimmed + "/"
}

// ListWithContext retrieves all resources matching the given parameters using the provided context.
// VergeOS table endpoints return the full (optionally filtered) row list in one response.
func (e *VergeResource) ListWithContext(ctx context.Context, params Params) (RecordSet, error) {
	return Request[RecordSet](ctx, e, http.MethodGet, e.resourcePath, params, nil)
}

// CreateWithContext creates a new resource using the provided parameters and context.
func (e *VergeResource) CreateWithContext(ctx context.Context, body Params) (Record, error) {
	return Request[Record](ctx, e, http.MethodPost, e.resourcePath, nil, body)
}

// UpdateWithContext updates an existing resource by its key using the provided parameters and context.
func (e *VergeResource) UpdateWithContext(ctx context.Context, id any, body Params) (Record, error) {
	path := BuildResourcePathWithID(e.resourcePath, id)
	return Request[Record](ctx, e, http.MethodPut, path, nil, body)
}

// DeleteWithContext deletes a resource found using searchParams, using the provided deleteParams,
// within the given context. If the resource is not found, it returns success without error.
func (e *VergeResource) DeleteWithContext(ctx context.Context, searchParams, queryParams, deleteParams Params) (Record, error) {
	result, err := e.GetWithContext(ctx, searchParams)
	if err != nil {
		if IsNotFoundErr(err) {
			// Resource not found. For "Delete" it is not an error condition.
			return Record{}, nil
		}
		return nil, err
	}
	if !result.HasKey() {
		return nil, fmt.Errorf(
			"resource '%s' does not have a key field in body"+
				" and thereby cannot be deleted by key", e.GetResourceType(),
		)
	}
	return e.DeleteByIdWithContext(ctx, result.RecordKey(), queryParams, deleteParams)
}

// DeleteByIdWithContext deletes a resource by its unique key using the provided context and delete parameters.
func (e *VergeResource) DeleteByIdWithContext(ctx context.Context, id any, queryParams, deleteParams Params) (Record, error) {
	path := BuildResourcePathWithID(e.resourcePath, id)
	return Request[Record](ctx, e, http.MethodDelete, path, queryParams, deleteParams)
}

// EnsureWithContext ensures a resource matching the search parameters exists. If not, it creates it using the body.
func (e *VergeResource) EnsureWithContext(ctx context.Context, searchParams Params, body Params) (Record, error) {
	result, err := e.GetWithContext(ctx, searchParams)
	if IsNotFoundErr(err) {
		return e.CreateWithContext(ctx, body)
	} else if err != nil {
		return nil, err
	}
	return result, nil
}

// GetWithContext retrieves a single resource that matches the given parameters using the provided context.
// Returns a NotFoundError if no resource is found.
func (e *VergeResource) GetWithContext(ctx context.Context, params Params) (Record, error) {
	result, err := e.ListWithContext(ctx, params)

	if err != nil {
		return nil, err
	}
	switch len(result) {
	case 0:
		return nil, &NotFoundError{
			Resource: e.resourcePath,
			Query:    params.ToQuery(),
		}
	case 1:
		singleResult := result[0]
		if singleResult.Empty() {
			return nil, &NotFoundError{
				Resource: e.resourcePath,
				Query:    params.ToQuery(),
			}
		}
		return singleResult, nil
	default:
		return nil, &TooManyRecordsError{
			ResourcePath: e.resourcePath,
			Params:       params,
		}
	}
}

// GetByIdWithContext retrieves a resource by its unique key using the provided context.
//
// Not all VergeOS resources have strictly numeric keys; some use names or other formats.
// Therefore, this method accepts a generic 'id' parameter and dynamically formats the
// request path to handle both numeric and non-numeric identifiers.
func (e *VergeResource) GetByIdWithContext(ctx context.Context, id any) (Record, error) {
	path := BuildResourcePathWithID(e.resourcePath, id)
	return Request[Record](ctx, e, http.MethodGet, path, nil, nil)
}

// ExistsWithContext checks if any resource matches the provided parameters within the given context.
// Returns true if a match is found. Returns false if not found. Returns an error only if an unexpected failure occurs.
func (e *VergeResource) ExistsWithContext(ctx context.Context, params Params) (bool, error) {
	if _, err := e.GetWithContext(ctx, params); err != nil && !IsTooManyRecordsErr(err) {
		if !IsNotFoundErr(err) {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// MustExistsWithContext checks if a resource exists using the provided context and parameters.
// This method panics if an unexpected error occurs during the check.
func (e *VergeResource) MustExistsWithContext(ctx context.Context, params Params) bool {
	return Must(e.ExistsWithContext(ctx, params))
}

// List retrieves all resources matching the given parameters using the bound REST context.
func (e *VergeResource) List(params Params) (RecordSet, error) {
	return e.ListWithContext(e.Rest.GetCtx(), params)
}

// Create creates a new resource using the provided parameters and the bound REST context.
func (e *VergeResource) Create(params Params) (Record, error) {
	return e.CreateWithContext(e.Rest.GetCtx(), params)
}

// Update updates a resource by its key using the provided parameters and the bound REST context.
func (e *VergeResource) Update(id any, params Params) (Record, error) {
	return e.UpdateWithContext(e.Rest.GetCtx(), id, params)
}

// Delete deletes a resource found with searchParams using deleteParams and the bound REST context.
// Returns success even if the resource is not found.
func (e *VergeResource) Delete(searchParams, deleteParams Params) (Record, error) {
	return e.DeleteWithContext(e.Rest.GetCtx(), searchParams, nil, deleteParams)
}

// DeleteById deletes a resource by its key using the bound REST context and provided deleteParams.
func (e *VergeResource) DeleteById(id any, queryParams, deleteParams Params) (Record, error) {
	return e.DeleteByIdWithContext(e.Rest.GetCtx(), id, queryParams, deleteParams)
}

// Ensure ensures a resource exists matching the searchParams. Creates it with body if not found.
func (e *VergeResource) Ensure(searchParams, body Params) (Record, error) {
	return e.EnsureWithContext(e.Rest.GetCtx(), searchParams, body)
}

// Get retrieves a single resource matching the given parameters using the bound REST context.
// Returns NotFoundError if the resource does not exist.
func (e *VergeResource) Get(params Params) (Record, error) {
	return e.GetWithContext(e.Rest.GetCtx(), params)
}

// GetById retrieves a resource by its key using the bound REST context.
func (e *VergeResource) GetById(id any) (Record, error) {
	return e.GetByIdWithContext(e.Rest.GetCtx(), id)
}

// Exists checks if any resource matches the given parameters using the bound REST context.
func (e *VergeResource) Exists(params Params) (bool, error) {
	return e.ExistsWithContext(e.Rest.GetCtx(), params)
}

// MustExists performs an existence check for a resource using the given parameters.
// If an error occurs during the check (other than not-found), the method panics.
func (e *VergeResource) MustExists(params Params) bool {
	return e.MustExistsWithContext(e.Rest.GetCtx(), params)
}

// Lock acquires the resource-level mutex and returns a function to release it.
// This allows for convenient deferring of unlock operations:
//
//	defer resource.Lock()()
func (e *VergeResource) Lock(keys ...any) func() {
	return e.mu.Lock(keys...)
}

func (e *VergeResource) String() string {
	return fmt.Sprintf("%s [%s]", e.resourceType, e.GetResourcePath())
}
