package rest

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/verge-io/go-verge-client/core"
	"github.com/verge-io/go-verge-client/resources/untyped"
)

// UntypedVergeResourceType defines the interface constraint for all untyped resources.
type UntypedVergeResourceType interface {
	core.VergeResourceAPIWithContext
}

// UntypedVergeRest is the client façade over a VergeOS system. Every field is
// one API table, ready for CRUD plus the resource's own operations.
type UntypedVergeRest struct {
	ctx         context.Context
	Session     core.RESTSession
	resourceMap map[string]core.VergeResourceAPIWithContext // Map to store resources by resourceType

	Tasks          *untyped.Task
	Machines       *untyped.Machine
	MachineImports *untyped.MachineImport
	NASServices    *untyped.NASService
	NASVolumes     *untyped.NASVolume
	VolumeBrowses  *untyped.VolumeBrowse
	Files          *untyped.File
	Users          *untyped.User
	Groups         *untyped.Group
	Permissions    *untyped.Permission
	Snapshots      *untyped.Snapshot
	Metrics        *untyped.Metric
	Versions       *untyped.Version
}

func NewUntypedVergeRest(config *core.VergeConfig) (*UntypedVergeRest, error) {
	config.Validate(
		core.WithAuth,
		core.WithHost,
		core.WithUserAgent,
		core.WithFillFn,
		core.WithApiVersion("v4"),
		core.WithTimeout(time.Second*30),
		core.WithMaxConnections(10),
		core.WithPort(443),
	)
	session, err := core.NewVergeSession(config)
	if err != nil {
		return nil, err
	}
	rest := &UntypedVergeRest{
		Session:     session,
		resourceMap: make(map[string]core.VergeResourceAPIWithContext),
	}

	// Set context: use provided context or default to background context
	if config.Context != nil {
		rest.SetCtx(config.Context)
	} else {
		rest.SetCtx(context.Background())
	}

	// Fill in each resource, pointing back to the same rest
	rest.Tasks = newUntypedResource[untyped.Task](rest, "tasks")
	rest.Machines = newUntypedResource[untyped.Machine](rest, "machines")
	rest.MachineImports = newUntypedResource[untyped.MachineImport](rest, "machine_imports")
	rest.NASServices = newUntypedResource[untyped.NASService](rest, "nas_services")
	rest.NASVolumes = newUntypedResource[untyped.NASVolume](rest, "volumes")
	rest.VolumeBrowses = newUntypedResource[untyped.VolumeBrowse](rest, "volume_browses")
	rest.Files = newUntypedResource[untyped.File](rest, "files")
	rest.Users = newUntypedResource[untyped.User](rest, "users")
	rest.Groups = newUntypedResource[untyped.Group](rest, "groups")
	rest.Permissions = newUntypedResource[untyped.Permission](rest, "permissions")
	rest.Snapshots = newUntypedResource[untyped.Snapshot](rest, "cloud_snapshots")
	rest.Metrics = newUntypedResource[untyped.Metric](rest, "metrics")
	rest.Versions = newUntypedResource[untyped.Version](rest, "versions")

	return rest, nil
}

func (rest *UntypedVergeRest) GetSession() core.RESTSession {
	return rest.Session
}

func (rest *UntypedVergeRest) GetResourceMap() map[string]core.VergeResourceAPIWithContext {
	return rest.resourceMap
}

func (rest *UntypedVergeRest) GetCtx() context.Context {
	return rest.ctx
}

func (rest *UntypedVergeRest) SetCtx(ctx context.Context) {
	rest.ctx = ctx
}

func newUntypedResource[T UntypedVergeResourceType](rest *UntypedVergeRest, resourcePath string) *T {
	// Get the concrete type from the type parameter
	var zero T
	t := reflect.TypeOf(zero)
	resourceType := t.Name()

	// Create new instance using reflection
	instance := reflect.New(t).Interface()

	// Create VergeResource with parent reference for method discovery via reflection
	resource := core.NewVergeResource(resourcePath, resourceType, rest, instance)

	// Set the embedded *VergeResource field using reflection.
	// All untyped resources embed *core.VergeResource
	val := reflect.ValueOf(instance).Elem()
	found := false
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if field.Type() == reflect.TypeOf((*core.VergeResource)(nil)) {
			if field.CanSet() {
				field.Set(reflect.ValueOf(resource))
				found = true
				break
			}
		}
	}
	if !found {
		panic(fmt.Sprintf("Resource %s does not embed *core.VergeResource or field is not settable", resourceType))
	}

	// Register in resource map
	if res, ok := instance.(core.VergeResourceAPIWithContext); ok {
		rest.resourceMap[resourceType] = res
	}

	// Return as pointer to the constrained type
	if result, ok := instance.(*T); ok {
		return result
	}
	panic(fmt.Sprintf("Failed to convert instance to type *%s", resourceType))
}
