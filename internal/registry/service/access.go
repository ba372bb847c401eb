package service

import (
	"context"

	dErrors "sftgate/pkg/domain-errors"
)

// HasAccess decides whether the caller may act on the container. The first
// record matching the container name decides: a non-active record denies,
// elevated roles bypass the identity binding, and external callers must match
// the record's bound external identity exactly. Finding no record is a plain
// deny, not an error; a failed lookup denies and reports the failure so the
// caller can distinguish deny from outage.
func (s *Service) HasAccess(ctx context.Context, callerID, container string, isAdmin, isOrgUser bool) (bool, error) {
	records, err := s.store.FindByContainer(ctx, container)
	if err != nil {
		s.denied()
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "registry lookup failed")
	}

	for _, tp := range records {
		if !tp.IsActive() {
			s.denied()
			return false, nil
		}
		if isAdmin || isOrgUser {
			s.granted()
			return true, nil
		}
		if tp.ExternalIdentityRef != "" && tp.ExternalIdentityRef == callerID {
			s.granted()
			return true, nil
		}
		s.denied()
		return false, nil
	}

	s.denied()
	return false, nil
}

// AccessibleContainers returns the deduplicated container names the caller
// may see: every active container for elevated roles, or the active
// containers bound to the caller's identity for external callers.
func (s *Service) AccessibleContainers(ctx context.Context, callerID string, isAdmin, isOrgUser bool) ([]string, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "registry lookup failed")
	}

	seen := make(map[string]struct{})
	containers := make([]string, 0, len(records))
	for _, tp := range records {
		if !tp.IsActive() {
			continue
		}
		if !isAdmin && !isOrgUser && (tp.ExternalIdentityRef == "" || tp.ExternalIdentityRef != callerID) {
			continue
		}
		if _, dup := seen[tp.ContainerName]; dup {
			continue
		}
		seen[tp.ContainerName] = struct{}{}
		containers = append(containers, tp.ContainerName)
	}
	return containers, nil
}

func (s *Service) granted() {
	if s.metrics != nil {
		s.metrics.IncrementAccessGranted()
	}
}

func (s *Service) denied() {
	if s.metrics != nil {
		s.metrics.IncrementAccessDenied()
	}
}
