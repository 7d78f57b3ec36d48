package groups

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provis-dev/provision/internal/domain/manifest"
	"github.com/provis-dev/provision/internal/domain/state"
	"github.com/provis-dev/provision/internal/domain/step"
	"github.com/provis-dev/provision/internal/ports"
	"github.com/provis-dev/provision/internal/testutil/mocks"
)

func staticUser(user string) userFn {
	return func(step.RunContext) (string, error) { return user, nil }
}

func runCtx() step.RunContext {
	return step.NewRunContext(context.Background())
}

func TestMembershipStep_Check(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("getent", []string{"group", "docker"}, ports.CommandResult{ExitCode: 0, Stdout: "docker:x:970:alice,bob"})

	s := NewMembershipStep("docker", staticUser("alice"), step.PolicyFatal, runner)
	status, err := s.Check(runCtx())
	require.NoError(t, err)
	assert.Equal(t, step.StatusSatisfied, status)

	s = NewMembershipStep("docker", staticUser("carol"), step.PolicyFatal, runner)
	status, err = s.Check(runCtx())
	require.NoError(t, err)
	assert.Equal(t, step.StatusNeedsApply, status)
}

func TestMembershipStep_Check_EmptyMemberList(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("getent", []string{"group", "docker"}, ports.CommandResult{ExitCode: 0, Stdout: "docker:x:970:"})

	s := NewMembershipStep("docker", staticUser("alice"), step.PolicyFatal, runner)
	status, err := s.Check(runCtx())
	require.NoError(t, err)
	assert.Equal(t, step.StatusNeedsApply, status)
}

func TestMembershipStep_Apply_AddsAndRecords(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("getent", []string{"group", "docker"}, ports.CommandResult{ExitCode: 0, Stdout: "docker:x:970:"})
	runner.AddResult("sudo", []string{"usermod", "-aG", "docker", "alice"}, ports.CommandResult{ExitCode: 0})

	s := NewMembershipStep("docker", staticUser("alice"), step.PolicyFatal, runner)
	records, err := s.Apply(runCtx())

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, state.KindGroupMembershipAdded, records[0].Kind)
	assert.Equal(t, "alice", records[0].Get("user"))
	assert.Equal(t, "docker", records[0].Get("group"))
}

func TestMembershipStep_Apply_SkipsRecordWhenAlreadyMember(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("getent", []string{"group", "docker"}, ports.CommandResult{ExitCode: 0, Stdout: "docker:x:970:alice"})

	s := NewMembershipStep("docker", staticUser("alice"), step.PolicyFatal, runner)
	records, err := s.Apply(runCtx())

	require.NoError(t, err)
	assert.Empty(t, records, "a pre-existing membership must never be recorded")
}

func TestMembershipStep_Apply_ProbeFailureAborts(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddError("getent", []string{"group", "docker"}, errors.New("getent: command not found"))
	runner.AddResult("sudo", []string{"usermod", "-aG", "docker", "alice"}, ports.CommandResult{ExitCode: 0})

	s := NewMembershipStep("docker", staticUser("alice"), step.PolicyFatal, runner)
	records, err := s.Apply(runCtx())

	require.Error(t, err)
	assert.Empty(t, records, "no record may be written without a verified membership probe")

	for _, call := range runner.Calls() {
		assert.NotEqual(t, "sudo", call.Command, "usermod must not run when the probe failed")
	}
}

func TestMembershipStep_Revert(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("sudo", []string{"gpasswd", "-d", "alice", "docker"}, ports.CommandResult{ExitCode: 0})

	s := NewMembershipStep("docker", staticUser("alice"), step.PolicyFatal, runner)
	records := []state.ChangeRecord{
		state.NewChangeRecord(s.ID().String(), state.KindGroupMembershipAdded, map[string]string{"user": "alice", "group": "docker"}),
	}

	require.NoError(t, s.Revert(runCtx(), records))
	require.Len(t, runner.Calls(), 1)
}

func TestUserResolver_PromptsOnceAndCaches(t *testing.T) {
	t.Parallel()

	prompter := mocks.NewPrompter()
	prompter.SetInput("Add which user to the configured groups?", "alice")

	resolver := newUserResolver(prompter)

	for i := 0; i < 3; i++ {
		user, err := resolver.resolve(runCtx())
		require.NoError(t, err)
		assert.Equal(t, "alice", user)
	}
	assert.Len(t, prompter.InputCalls, 1, "the user is asked once per run")
}

func TestProvider_Compile(t *testing.T) {
	t.Parallel()

	m, err := manifest.Parse([]byte(`
version: 1
groups:
  memberships:
    - user: alice
      group: docker
    - group: wireshark
      policy: warn
`))
	require.NoError(t, err)

	p := NewProvider(mocks.NewCommandRunner(), mocks.NewPrompter())
	steps, err := p.Compile(m)
	require.NoError(t, err)
	require.Len(t, steps, 2)

	assert.Equal(t, "groups:member:docker", steps[0].ID().String())
	assert.Equal(t, step.PolicyWarn, steps[1].Policy())
}
