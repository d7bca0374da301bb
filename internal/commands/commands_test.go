package commands_test

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"golang.org/x/oauth2"

	"taskman/internal/commands"
	"taskman/internal/config"
	"taskman/internal/engine"
	"taskman/internal/exitcode"
	"taskman/internal/service"
	"taskman/internal/session"
	"taskman/internal/testutil"
)

// testEnv builds an Env over backend with a stored credential.
func testEnv(t *testing.T, backend *testutil.FakeBackend, quiet bool) *commands.Env {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg.Quiet = quiet

	sess := session.Open(cfg.TokenPath())
	if err := sess.SetCredential(&oauth2.Token{AccessToken: "token-ada", TokenType: "Bearer"}); err != nil {
		t.Fatal(err)
	}
	env := &commands.Env{Config: cfg, Session: sess, Logger: cfg.Logger(nil)}
	if backend != nil {
		env.Engine = engine.New(backend, sess, engine.Options{})
		t.Cleanup(env.Engine.Close)
	}
	return env
}

// runCommand parses args with the command's flags and runs it against env.
func runCommand(t *testing.T, cmd commands.Command, env *commands.Env, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), env, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, testEnv(t, nil, false))

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskman 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, testEnv(t, nil, false))

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, name := range []string{"list", "add", "done", "edit", "rm", "ui", "login", "register", "logout"} {
		if !strings.Contains(stdout, "taskman "+name) {
			t.Errorf("expected help to mention %q", name)
		}
	}
}

func TestHelpCommand_ForCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.HelpCmd{}, testEnv(t, nil, false), "rm")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "Usage: taskman rm <id>\n\nDelete a task\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestHelpCommand_UnknownCommand(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.HelpCmd{}, testEnv(t, nil, false), "frobnicate")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown command: frobnicate\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

// Tests for list command
func TestListCommand_WithTasks(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.AddTask("write report", "due friday", false)
	backend.AddTask("buy milk", "", true)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, testEnv(t, backend, false))

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "2 of 2 tasks (filter: all, sort: title asc)\n" +
		"------------\n" +
		"   2  [x] buy milk\n" +
		"   1  [ ] write report\n" +
		"            due friday\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ListCmd{}, testEnv(t, testutil.NewFakeBackend(), false))

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasSuffix(stdout, "no tasks\n") {
		t.Errorf("expected 'no tasks', got %q", stdout)
	}
}

func TestListCommand_FilterAndSortFlags(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.AddTask("a", "", false)
	backend.AddTask("b", "", true)
	backend.AddTask("c", "", false)

	stdout, _, code := runCommand(t, &commands.ListCmd{}, testEnv(t, backend, false),
		"--filter", "incomplete", "--sort", "id", "--order", "desc")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "2 of 3 tasks (filter: incomplete, sort: id desc)\n" +
		"------------\n" +
		"   3  [ ] c\n" +
		"   1  [ ] a\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_OrderKeepsField(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.AddTask("alpha", "", false)
	backend.AddTask("beta", "", false)

	stdout, _, _ := runCommand(t, &commands.ListCmd{}, testEnv(t, backend, false), "-o", "desc")

	if !strings.HasPrefix(stdout, "2 of 2 tasks (filter: all, sort: title desc)\n") {
		t.Errorf("unexpected header: %q", stdout)
	}
	if strings.Index(stdout, "beta") > strings.Index(stdout, "alpha") {
		t.Errorf("expected beta before alpha, got %q", stdout)
	}
}

func TestListCommand_InvalidFilter(t *testing.T) {
	backend := testutil.NewFakeBackend()
	_, stderr, code := runCommand(t, &commands.ListCmd{}, testEnv(t, backend, false), "-f", "someday")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: invalid filter: someday") {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if backend.ListCalls != 0 {
		t.Errorf("expected no fetch, got %d", backend.ListCalls)
	}
}

func TestListCommand_LoadFailure(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.ListErr = fmt.Errorf("list tasks: %w", service.ErrNetwork)

	_, stderr, code := runCommand(t, &commands.ListCmd{}, testEnv(t, backend, false))

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: "+engine.MsgLoadFailed+"\n" {
		t.Errorf("expected the fixed message only, got %q", stderr)
	}
}

func TestListCommand_SessionExpired(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.ListErr = fmt.Errorf("list tasks: %w", service.ErrUnauthorized)

	_, stderr, code := runCommand(t, &commands.ListCmd{}, testEnv(t, backend, false))

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.Contains(stderr, "run: taskman login") {
		t.Errorf("expected a login hint, got %q", stderr)
	}
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	backend := testutil.NewFakeBackend()

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, testEnv(t, backend, false),
		"-d", "whole milk", "buy", "milk")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}

	tasks := backend.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Title != "buy milk" || tasks[0].Description != "whole milk" || tasks[0].Completed {
		t.Errorf("unexpected task: %+v", tasks[0])
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.AddCmd{}, testEnv(t, testutil.NewFakeBackend(), true), "task")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout in quiet mode, got %q", stdout)
	}
}

func TestAddCommand_NoTitle(t *testing.T) {
	backend := testutil.NewFakeBackend()

	_, stderr, code := runCommand(t, &commands.AddCmd{}, testEnv(t, backend, false), "   ")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: title required\n" {
		t.Errorf("expected title required error, got %q", stderr)
	}
	if backend.CreateCalls != 0 {
		t.Errorf("expected no create call, got %d", backend.CreateCalls)
	}
}

func TestAddCommand_Failure(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.CreateErr = fmt.Errorf("create task: %w", service.ErrValidation)

	_, stderr, code := runCommand(t, &commands.AddCmd{}, testEnv(t, backend, false), "task")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: "+engine.MsgAddFailed+"\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

// Tests for done command
func TestDoneCommand_Toggles(t *testing.T) {
	backend := testutil.NewFakeBackend()
	id := backend.AddTask("buy milk", "whole", false)
	env := testEnv(t, backend, false)

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, env, id)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	task, _ := backend.Task(id)
	if !task.Completed || task.Title != "buy milk" || task.Description != "whole" {
		t.Errorf("unexpected task after toggle: %+v", task)
	}

	stdout, _, _ = runCommand(t, &commands.DoneCmd{}, env, id)
	if stdout != "reopened\n" {
		t.Errorf("expected 'reopened\\n', got %q", stdout)
	}
	task, _ = backend.Task(id)
	if task.Completed {
		t.Error("expected task to be incomplete again")
	}
}

func TestDoneCommand_NoID(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.DoneCmd{}, testEnv(t, testutil.NewFakeBackend(), false))

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task id required\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestDoneCommand_NotFound(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.AddTask("buy milk", "", false)

	_, stderr, code := runCommand(t, &commands.DoneCmd{}, testEnv(t, backend, false), "99")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task not found: 99\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if backend.UpdateCalls != 0 {
		t.Errorf("expected no update call, got %d", backend.UpdateCalls)
	}
}

func TestDoneCommand_Failure(t *testing.T) {
	backend := testutil.NewFakeBackend()
	id := backend.AddTask("buy milk", "", false)
	backend.UpdateErr = fmt.Errorf("update task: %w", service.ErrNetwork)

	_, stderr, code := runCommand(t, &commands.DoneCmd{}, testEnv(t, backend, false), id)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: "+engine.MsgUpdateFailed+"\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

// Tests for edit command
func TestEditCommand_Title(t *testing.T) {
	backend := testutil.NewFakeBackend()
	id := backend.AddTask("buy milk", "whole", true)

	stdout, stderr, code := runCommand(t, &commands.EditCmd{}, testEnv(t, backend, false), "--title", "buy oat milk", id)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	task, _ := backend.Task(id)
	if task.Title != "buy oat milk" || task.Description != "whole" || !task.Completed {
		t.Errorf("unexpected task after edit: %+v", task)
	}
}

func TestEditCommand_ClearDescription(t *testing.T) {
	backend := testutil.NewFakeBackend()
	id := backend.AddTask("buy milk", "whole", false)

	_, _, code := runCommand(t, &commands.EditCmd{}, testEnv(t, backend, false), "-d", "", id)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	task, _ := backend.Task(id)
	if task.Description != "" || task.Title != "buy milk" {
		t.Errorf("unexpected task after edit: %+v", task)
	}
}

func TestEditCommand_NothingToChange(t *testing.T) {
	backend := testutil.NewFakeBackend()
	id := backend.AddTask("buy milk", "", false)

	_, stderr, code := runCommand(t, &commands.EditCmd{}, testEnv(t, backend, false), id)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: nothing to change") {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestEditCommand_BlankTitle(t *testing.T) {
	backend := testutil.NewFakeBackend()
	id := backend.AddTask("buy milk", "", false)
	env := testEnv(t, backend, false)

	_, stderr, code := runCommand(t, &commands.EditCmd{}, env, "--title", "  ", id)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: "+engine.MsgTitleRequired+"\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if backend.UpdateCalls != 0 {
		t.Errorf("expected no update call, got %d", backend.UpdateCalls)
	}
	if env.Engine.Snapshot().Dialog.Open() {
		t.Error("expected the dialog to be closed after the command")
	}
}

// Tests for rm command
func TestRmCommand_Success(t *testing.T) {
	backend := testutil.NewFakeBackend()
	id := backend.AddTask("buy milk", "", false)
	backend.AddTask("write report", "", false)

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, testEnv(t, backend, false), id)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "deleted: buy milk\n" {
		t.Errorf("expected deleted message, got %q", stdout)
	}
	if _, ok := backend.Task(id); ok {
		t.Error("expected task to be deleted")
	}
	if len(backend.Tasks()) != 1 {
		t.Errorf("expected 1 remaining task, got %d", len(backend.Tasks()))
	}
}

func TestRmCommand_NoID(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.RmCmd{}, testEnv(t, testutil.NewFakeBackend(), false))

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task id required\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestRmCommand_DeletedElsewhere(t *testing.T) {
	backend := testutil.NewFakeBackend()
	id := backend.AddTask("buy milk", "", false)
	backend.Hook = func(ctx context.Context, op string) {
		if op == "delete" {
			backend.RemoveTask(id)
		}
	}

	_, stderr, code := runCommand(t, &commands.RmCmd{}, testEnv(t, backend, false), id)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: "+engine.MsgDeleteFailed+"\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

// Tests for register command
func TestRegisterCommand_Success(t *testing.T) {
	backend := testutil.NewFakeBackend()

	stdout, stderr, code := runCommand(t, &commands.RegisterCmd{}, testEnv(t, backend, false), "-p", " secret ", " ada ")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != engine.MsgUserCreated+"\n" {
		t.Errorf("unexpected stdout: %q", stdout)
	}
	want := service.Credentials{Username: "ada", Password: "secret"}
	if backend.LastRegistered != want {
		t.Errorf("expected trimmed credentials %+v, got %+v", want, backend.LastRegistered)
	}
}

func TestRegisterCommand_Taken(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.AddUser("ada", "secret")

	_, stderr, code := runCommand(t, &commands.RegisterCmd{}, testEnv(t, backend, false), "-p", "other", "ada")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: "+engine.MsgCreateUserFailed+"\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestRegisterCommand_PasswordFromEnv(t *testing.T) {
	t.Setenv(commands.PasswordEnv, "from-env")
	backend := testutil.NewFakeBackend()

	_, _, code := runCommand(t, &commands.RegisterCmd{}, testEnv(t, backend, true), "ada")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if backend.LastRegistered.Password != "from-env" {
		t.Errorf("expected password from %s, got %q", commands.PasswordEnv, backend.LastRegistered.Password)
	}
}

func TestRegisterCommand_Unsupported(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.RegisterErr = fmt.Errorf("register: %w", service.ErrUnsupported)
	env := testEnv(t, backend, false)
	env.Config.Backend = config.BackendGoogleTasks

	_, stderr, code := runCommand(t, &commands.RegisterCmd{}, env, "-p", "secret", "ada")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: the googletasks backend does not support registration\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestRegisterCommand_NoPassword(t *testing.T) {
	t.Setenv(commands.PasswordEnv, "")
	backend := testutil.NewFakeBackend()

	_, stderr, code := runCommand(t, &commands.RegisterCmd{}, testEnv(t, backend, false), "ada")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: password required") {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if backend.RegisterCalls != 0 {
		t.Errorf("expected no register call, got %d", backend.RegisterCalls)
	}
}

// tokenPath is where testEnv stores the credential.
func tokenPath(env *commands.Env) string {
	return filepath.Join(env.Config.Dir, config.TokenFile)
}
