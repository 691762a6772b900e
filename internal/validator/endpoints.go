package validator

import (
	"slices"

	"github.com/roach88/apimodel/internal/model"
)

// orderEndpoints puts endpoints whose request and response both resolve
// first, keeping input order within each group. Shared types then get their
// errors attributed to a complete endpoint.
func (s *session) orderEndpoints(eps []model.Endpoint) []model.Endpoint {
	var complete, partial []model.Endpoint
	for _, ep := range eps {
		if s.resolves(ep.Request) && s.resolves(ep.Response) {
			complete = append(complete, ep)
		} else {
			partial = append(partial, ep)
		}
	}
	s.log.Debug("endpoints ordered", "complete", len(complete), "partial", len(partial))
	return append(complete, partial...)
}

func (s *session) resolves(name *model.TypeName) bool {
	return name != nil && s.isType(*name)
}

func (s *session) validateEndpoint(ep model.Endpoint) {
	req := scope{endpoint: ep.Name, side: SideRequest}
	res := scope{endpoint: ep.Name, side: SideResponse}

	s.checkDocURL(req, ep.DocURL)

	if def, ok := s.validateEndpointType(req, ep.Request, model.KindRequest); ok {
		if r, ok := def.(*model.Request); ok {
			s.checkPath(req.with(r.Name.String()), ep, r)
		}
	}
	s.checkRouting(req, ep)
	s.validateEndpointType(res, ep.Response, model.KindResponse)
}

// validateEndpointType resolves a request or response type, applies the
// leaf check at this site and validates the definition.
func (s *session) validateEndpointType(sc scope, name *model.TypeName, want model.Kind) (model.TypeDefinition, bool) {
	if name == nil {
		if want == model.KindRequest {
			s.errorf(sc, ErrMissingEndpointType, "Missing request type")
		} else {
			s.errorf(sc, ErrMissingEndpointType, "Missing response type")
		}
		return nil, false
	}

	def, ok := s.lookup(*name)
	if !ok {
		if s.isBehavior(*name) {
			s.errorf(sc, ErrKindMismatch, "'%s' is a behavior, expected %s", *name, want)
		} else {
			s.errorf(sc, ErrUnresolvedReference, "No type definition for '%s'", *name)
		}
		return nil, false
	}
	if def.Kind() != want {
		s.errorf(sc, ErrKindMismatch, "'%s' has kind %s, expected %s", *name, def.Kind(), want)
	}
	s.guardLeaf(sc, *name)
	s.validateTypeRef(sc, *name)
	return def, true
}

// checkPath reports the symmetric difference between the url placeholders
// and the request path property keys.
func (s *session) checkPath(sc scope, ep model.Endpoint, r *model.Request) {
	placeholders := ep.Placeholders()
	keys := make([]string, 0, len(r.Path))
	for _, p := range r.Path {
		keys = append(keys, p.Key())
	}

	for _, p := range placeholders {
		if !slices.Contains(keys, p) {
			s.errorf(sc, ErrPathMismatch, "Path parameter '%s' is missing in request definition", p)
		}
	}
	for _, k := range keys {
		if !slices.Contains(placeholders, k) {
			s.errorf(sc.with("path").with(k), ErrPathMismatch, "Path property '%s' does not appear in any url template", k)
		}
	}
}

// checkRouting compares the url placeholders with an independent routing
// spec when one lists the endpoint.
func (s *session) checkRouting(sc scope, ep model.Endpoint) {
	paths, ok := s.opts.Routing[ep.Name]
	if !ok {
		return
	}
	var routed []string
	for _, path := range paths {
		for _, p := range model.Placeholders(path) {
			if !slices.Contains(routed, p) {
				routed = append(routed, p)
			}
		}
	}

	declared := ep.Placeholders()
	for _, p := range routed {
		if !slices.Contains(declared, p) {
			s.errorf(sc, ErrPathMismatch, "Routing spec placeholder '%s' does not appear in any url template", p)
		}
	}
	for _, p := range declared {
		if !slices.Contains(routed, p) {
			s.errorf(sc, ErrPathMismatch, "Url placeholder '%s' is not in the routing spec", p)
		}
	}
}
