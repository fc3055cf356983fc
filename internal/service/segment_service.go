// internal/service/segment_service.go
package service

import (
	"strings"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/model"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/repository"
)

type SegmentService struct {
	SegmentRepo repository.SegmentRepositoryInterface
	UserRepo    repository.UserRepositoryInterface
}

func (s *SegmentService) CreateSegment(name string, def model.FilterDefinition) (*model.Segment, error) {
	if strings.TrimSpace(name) == "" {
		return nil, appErrors.NewValidation("name", "segment name is required")
	}
	for _, p := range def.Filters {
		if strings.TrimSpace(p.Path) == "" {
			return nil, appErrors.NewValidation("definition", "predicate path is required")
		}
	}
	seg := &model.Segment{Name: name, Definition: def}
	if err := s.SegmentRepo.Create(seg); err != nil {
		return nil, err
	}
	return seg, nil
}

// EvaluateMembers resolves the segment against the current active recipient
// population. Membership is always computed fresh; the definition is the
// source of truth and the result is transient.
func (s *SegmentService) EvaluateMembers(segmentID int) ([]model.User, error) {
	seg, err := s.SegmentRepo.GetByID(segmentID)
	if err != nil {
		return nil, err
	}
	if seg == nil {
		return nil, appErrors.NewSegmentNotFound(segmentID)
	}
	population, err := s.UserRepo.ListActive()
	if err != nil {
		return nil, err
	}
	return Resolve(seg.Definition, population), nil
}

// Resolve is a pure function from a filter definition and a candidate
// population to the matching subset. A recipient matches iff it matches
// every predicate; an empty predicate list matches everyone. The result is
// a fresh slice each call.
func Resolve(def model.FilterDefinition, population []model.User) []model.User {
	matched := []model.User{}
	for _, u := range population {
		if matchesAll(u, def.Filters) {
			matched = append(matched, u)
		}
	}
	return matched
}

func matchesAll(u model.User, filters []model.Predicate) bool {
	for _, p := range filters {
		if !matches(u, p) {
			return false
		}
	}
	return true
}

// matches evaluates one predicate. Anything unresolvable — a path outside
// the attribute bag, a missing attribute, an unsupported operator, a type
// mismatch — is a non-match, never an error.
func matches(u model.User, p model.Predicate) bool {
	key, ok := strings.CutPrefix(p.Path, "attributes.")
	if !ok || key == "" {
		return false
	}
	val, present := u.Attributes[key]

	switch p.Op {
	case model.OpExists:
		want, ok := p.Value.(bool)
		if !ok {
			want = true
		}
		return present == want
	case model.OpEq:
		return present && scalarEqual(val, p.Value)
	case model.OpNeq:
		return present && !scalarEqual(val, p.Value)
	case model.OpContains:
		s, ok1 := val.(string)
		sub, ok2 := p.Value.(string)
		return present && ok1 && ok2 && strings.Contains(s, sub)
	case model.OpGt:
		a, ok1 := asNumber(val)
		b, ok2 := asNumber(p.Value)
		return present && ok1 && ok2 && a > b
	case model.OpLt:
		a, ok1 := asNumber(val)
		b, ok2 := asNumber(p.Value)
		return present && ok1 && ok2 && a < b
	default:
		// Unsupported operators fail closed for backward compatibility.
		return false
	}
}

// scalarEqual compares JSON scalars: strings, numbers, bools and null.
func scalarEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if an, ok := asNumber(a); ok {
		bn, ok := asNumber(b)
		return ok && an == bn
	}
	return a == b
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
