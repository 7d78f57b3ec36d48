package groups

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/provis-dev/provision/internal/domain/state"
	"github.com/provis-dev/provision/internal/domain/step"
	"github.com/provis-dev/provision/internal/ports"
)

// ErrNoUser indicates no target user could be determined for a
// membership step.
var ErrNoUser = errors.New("no target user")

// userFn resolves the target user for a membership step.
type userFn func(step.RunContext) (string, error)

// userResolver asks the operator once for the target user and caches
// the answer for the rest of the run.
type userResolver struct {
	prompter ports.Prompter
	once     sync.Once
	user     string
	err      error
}

func newUserResolver(prompter ports.Prompter) *userResolver {
	return &userResolver{prompter: prompter}
}

func (r *userResolver) resolve(ctx step.RunContext) (string, error) {
	r.once.Do(func() {
		fallback := currentUser()
		if r.prompter == nil {
			r.user = fallback
			return
		}
		answer, err := r.prompter.Input(ctx.Context(), "Add which user to the configured groups?", fallback)
		if err != nil {
			r.err = err
			return
		}
		r.user = strings.TrimSpace(answer)
	})
	if r.err != nil {
		return "", r.err
	}
	if r.user == "" {
		return "", ErrNoUser
	}
	return r.user, nil
}

// MembershipStep adds a user to a supplementary group.
type MembershipStep struct {
	group  string
	user   userFn
	id     step.ID
	policy step.FailurePolicy
	runner ports.CommandRunner
}

// NewMembershipStep creates a group membership step.
func NewMembershipStep(group string, user userFn, policy step.FailurePolicy, runner ports.CommandRunner) *MembershipStep {
	return &MembershipStep{
		group:  group,
		user:   user,
		id:     step.MustNewID("groups:member:" + group),
		policy: policy,
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *MembershipStep) ID() step.ID {
	return s.id
}

// Label returns a human-readable description.
func (s *MembershipStep) Label() string {
	return "Group membership " + s.group
}

// Policy returns the failure policy.
func (s *MembershipStep) Policy() step.FailurePolicy {
	return s.policy
}

// Check reports satisfied when the user is already listed in the
// group's member list.
func (s *MembershipStep) Check(ctx step.RunContext) (step.Status, error) {
	user, err := s.user(ctx)
	if err != nil {
		return step.StatusUnknown, err
	}

	member, err := s.isMember(ctx, user)
	if err != nil {
		return step.StatusUnknown, err
	}
	if member {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsApply, nil
}

// Apply adds the user to the group. Membership is probed immediately
// beforehand; a record is written only when this run added the user,
// and a failed probe aborts the apply since absence was not verified.
func (s *MembershipStep) Apply(ctx step.RunContext) ([]state.ChangeRecord, error) {
	user, err := s.user(ctx)
	if err != nil {
		return nil, err
	}

	member, err := s.isMember(ctx, user)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, nil
	}

	result, err := s.runner.Run(ctx.Context(), "sudo", "usermod", "-aG", s.group, user)
	if err != nil {
		return nil, fmt.Errorf("usermod -aG %s %s: %w", s.group, user, err)
	}
	if !result.Success() {
		return nil, step.NewCommandError("usermod", []string{"-aG", s.group, user}, result)
	}

	return []state.ChangeRecord{state.NewChangeRecord(s.id.String(), state.KindGroupMembershipAdded, map[string]string{
		"user":  user,
		"group": s.group,
	})}, nil
}

// Revert removes recorded memberships via gpasswd.
func (s *MembershipStep) Revert(ctx step.RunContext, records []state.ChangeRecord) error {
	var errs []error
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if rec.Kind != state.KindGroupMembershipAdded {
			continue
		}
		user, group := rec.Get("user"), rec.Get("group")
		if user == "" || group == "" {
			continue
		}

		result, err := s.runner.Run(ctx.Context(), "sudo", "gpasswd", "-d", user, group)
		if err != nil {
			errs = append(errs, fmt.Errorf("gpasswd -d %s %s: %w", user, group, err))
			continue
		}
		if !result.Success() {
			errs = append(errs, step.NewCommandError("gpasswd", []string{"-d", user, group}, result))
		}
	}
	return errors.Join(errs...)
}

// isMember parses `getent group` output: group:x:gid:user1,user2.
func (s *MembershipStep) isMember(ctx step.RunContext, user string) (bool, error) {
	result, err := s.runner.Run(ctx.Context(), "getent", "group", s.group)
	if err != nil {
		return false, err
	}
	if !result.Success() {
		return false, step.NewCommandError("getent", []string{"group", s.group}, result)
	}

	parts := strings.Split(strings.TrimSpace(result.Stdout), ":")
	if len(parts) < 4 {
		return false, nil
	}
	for _, member := range strings.Split(parts[3], ",") {
		if strings.TrimSpace(member) == user {
			return true, nil
		}
	}
	return false, nil
}

// Ensure MembershipStep implements RevertibleStep.
var _ step.RevertibleStep = (*MembershipStep)(nil)
