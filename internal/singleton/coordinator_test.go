package singleton

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/singleton/internal/argv"
	"github.com/Iron-Ham/singleton/internal/channel"
	"github.com/Iron-Ham/singleton/internal/config"
	"github.com/Iron-Ham/singleton/internal/errors"
	"github.com/Iron-Ham/singleton/internal/event"
	"github.com/Iron-Ham/singleton/internal/identity"
	"github.com/Iron-Ham/singleton/internal/lock"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := *config.Default()
	cfg.Channel.Dir = t.TempDir()
	cfg.Channel.PollInterval = 10 * time.Millisecond
	cfg.Follower.BackoffInitial = 0
	cfg.Follower.BackoffMax = 0
	cfg.Follower.PublishTimeout = 5 * time.Second
	return cfg
}

func testToken(t *testing.T) string {
	return "singleton-test-" + strings.ReplaceAll(t.Name(), "/", "-")
}

func staticArgs(args ...string) argv.Source {
	return argv.SourceFunc(func() ([]string, bool) { return args, true })
}

// recorder is an Activator that remembers every batch it receives.
type recorder struct {
	mu      sync.Mutex
	batches [][]string
	accept  bool
	notify  chan struct{}
}

func newRecorder(accept bool) *recorder {
	return &recorder{accept: accept, notify: make(chan struct{}, 64)}
}

func (r *recorder) SignalExternalCommandLineArgs(args []string) bool {
	r.mu.Lock()
	r.batches = append(r.batches, args)
	r.mu.Unlock()
	r.notify <- struct{}{}
	return r.accept
}

func (r *recorder) waitFor(t *testing.T, n int) [][]string {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		r.mu.Lock()
		if len(r.batches) >= n {
			out := append([][]string(nil), r.batches...)
			r.mu.Unlock()
			return out
		}
		r.mu.Unlock()
		select {
		case <-r.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for %d batches", n)
		}
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func startLeader(t *testing.T, cfg config.Config, token string, activator Activator, opts ...Option) *Coordinator {
	t.Helper()
	leader := New(cfg, token, activator, opts...)
	res, err := leader.Initialize(context.Background())
	if err != nil {
		t.Fatalf("leader Initialize: %v", err)
	}
	if res.Role != RoleLeader {
		t.Fatalf("first coordinator role = %v, want leader", res.Role)
	}
	t.Cleanup(func() { _ = leader.Cleanup() })
	return leader
}

func TestInitialize_ExactlyOneLeader(t *testing.T) {
	cfg := testConfig(t)
	token := testToken(t)

	const contenders = 8
	coords := make([]*Coordinator, contenders)
	for i := range coords {
		coords[i] = New(cfg, token, newRecorder(true), WithArgSource(staticArgs("x")))
	}

	var leaders atomic.Int32
	var wg conc.WaitGroup
	for _, c := range coords {
		wg.Go(func() {
			if c.InitializeAsFirstInstance(context.Background()) {
				leaders.Add(1)
			}
		})
	}
	wg.Wait()

	if got := leaders.Load(); got != 1 {
		t.Fatalf("%d coordinators became leader, want exactly 1", got)
	}
	for _, c := range coords {
		if err := c.Cleanup(); err != nil {
			t.Errorf("Cleanup: %v", err)
		}
	}
}

func TestFollowers_DeliverSeparateBatches(t *testing.T) {
	cfg := testConfig(t)
	token := testToken(t)
	rec := newRecorder(true)
	startLeader(t, cfg, token, rec)

	for _, args := range [][]string{{"--foo", "bar"}, {"--baz"}} {
		follower := New(cfg, token, nil, WithArgSource(staticArgs(args...)))
		if follower.InitializeAsFirstInstance(context.Background()) {
			t.Fatal("follower should not become leader")
		}
		_ = follower.Cleanup()
	}

	got := rec.waitFor(t, 2)
	want := [][]string{{"--foo", "bar"}, {"--baz"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("batches mismatch (-want +got):\n%s", diff)
	}

	time.Sleep(50 * time.Millisecond)
	if n := rec.count(); n != 2 {
		t.Errorf("activator called %d times, want 2", n)
	}
}

func TestFollower_EmptyArguments(t *testing.T) {
	cfg := testConfig(t)
	token := testToken(t)
	rec := newRecorder(true)
	startLeader(t, cfg, token, rec)

	follower := New(cfg, token, nil, WithArgSource(argv.SourceFunc(func() ([]string, bool) { return nil, false })))
	res, err := follower.Initialize(context.Background())
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if res.Delivery != DeliveryPublished {
		t.Errorf("Delivery = %v, want published", res.Delivery)
	}

	got := rec.waitFor(t, 1)
	if len(got[0]) != 0 {
		t.Errorf("batch = %q, want empty", got[0])
	}
}

// flakyOpener fails the first failures calls, then opens normally.
func flakyOpener(failures int, calls *atomic.Int32) ChannelOpener {
	return func(name string, opts ...channel.Option) (*channel.Channel, error) {
		n := int(calls.Add(1))
		if n <= failures {
			return nil, errors.NewChannelError("simulated contention", nil).WithChannel(name).WithAttempt(n)
		}
		return channel.Open(name, opts...)
	}
}

func TestFollower_SucceedsOnLastAttempt(t *testing.T) {
	cfg := testConfig(t)
	token := testToken(t)
	rec := newRecorder(true)
	startLeader(t, cfg, token, rec)

	bus := event.NewBus(nil)
	var retries atomic.Int32
	bus.Subscribe(event.TypeChannelRetry, func(event.Event) { retries.Add(1) })

	var calls atomic.Int32
	follower := New(cfg, token, nil,
		WithArgSource(staticArgs("--late")),
		WithChannelOpener(flakyOpener(49, &calls)),
		WithBus(bus),
	)
	res, err := follower.Initialize(context.Background())
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if res.Delivery != DeliveryPublished || res.Attempts != 50 {
		t.Errorf("result = %+v, want published after 50 attempts", res)
	}
	if got := calls.Load(); got != 50 {
		t.Errorf("opener called %d times, want 50", got)
	}
	if got := retries.Load(); got != 49 {
		t.Errorf("%d retry events, want 49", got)
	}

	got := rec.waitFor(t, 1)
	if diff := cmp.Diff([][]string{{"--late"}}, got); diff != "" {
		t.Errorf("batches mismatch (-want +got):\n%s", diff)
	}
}

func TestFollower_GivesUpAfterMaxAttempts(t *testing.T) {
	cfg := testConfig(t)
	token := testToken(t)
	rec := newRecorder(true)
	startLeader(t, cfg, token, rec)

	var calls atomic.Int32
	follower := New(cfg, token, nil,
		WithArgSource(staticArgs("--lost")),
		WithChannelOpener(flakyOpener(1000, &calls)),
	)
	res, err := follower.Initialize(context.Background())
	if !errors.Is(err, errors.ErrChannelUnavailable) {
		t.Fatalf("Initialize error = %v, want ErrChannelUnavailable", err)
	}
	if res.Role != RoleFollower || res.Delivery != DeliveryGaveUp {
		t.Errorf("result = %+v, want follower that gave up", res)
	}
	if got := calls.Load(); got != 50 {
		t.Errorf("opener called %d times, want 50", got)
	}

	calls.Store(0)
	other := New(cfg, token, nil,
		WithArgSource(staticArgs("--lost-too")),
		WithChannelOpener(flakyOpener(1000, &calls)),
	)
	if other.InitializeAsFirstInstance(context.Background()) {
		t.Error("a follower that gave up must still report false")
	}

	time.Sleep(100 * time.Millisecond)
	if n := rec.count(); n != 0 {
		t.Errorf("leader received %d batches, want 0", n)
	}
}

func TestFollower_RetryHonorsContext(t *testing.T) {
	cfg := testConfig(t)
	cfg.Follower.BackoffInitial = 50 * time.Millisecond
	cfg.Follower.BackoffMax = 50 * time.Millisecond
	cfg.Follower.Jitter = false
	token := testToken(t)
	startLeader(t, cfg, token, nil)

	var calls atomic.Int32
	follower := New(cfg, token, nil,
		WithArgSource(staticArgs("x")),
		WithChannelOpener(flakyOpener(1000, &calls)),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	res, err := follower.Initialize(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Initialize error = %v, want DeadlineExceeded", err)
	}
	if res.Attempts >= 50 {
		t.Errorf("attempts = %d, want the loop cut short", res.Attempts)
	}
}

func TestRequireAck(t *testing.T) {
	tests := []struct {
		name   string
		accept bool
		want   Delivery
	}{
		{"accepted", true, DeliveryAcknowledged},
		{"rejected", false, DeliveryRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Follower.RequireAck = true
			token := testToken(t)
			startLeader(t, cfg, token, newRecorder(tt.accept))

			follower := New(cfg, token, nil, WithArgSource(staticArgs("--open", "file.txt")))
			res, err := follower.Initialize(context.Background())
			if err != nil {
				t.Fatalf("Initialize: %v", err)
			}
			if res.Delivery != tt.want {
				t.Errorf("Delivery = %v, want %v", res.Delivery, tt.want)
			}
			if res.RecordID == "" {
				t.Error("RecordID should be set once published")
			}
		})
	}
}

func TestRequireAck_LeaderUnreachable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Follower.RequireAck = true
	cfg.Follower.AckTimeout = 100 * time.Millisecond
	token := testToken(t)

	// A lock holder that never listens.
	id, err := identity.New(token)
	if err != nil {
		t.Fatal(err)
	}
	holder := lock.New(LockPath(cfg, id))
	if ok, err := holder.TryLock(); err != nil || !ok {
		t.Fatalf("TryLock = %v, %v", ok, err)
	}
	defer holder.Unlock()

	follower := New(cfg, token, nil, WithArgSource(staticArgs("x")))
	res, err := follower.Initialize(context.Background())
	if !errors.Is(err, errors.ErrLeaderUnreachable) {
		t.Fatalf("Initialize error = %v, want ErrLeaderUnreachable", err)
	}
	if res.Delivery != DeliveryLeaderUnreachable {
		t.Errorf("Delivery = %v, want leader-unreachable", res.Delivery)
	}
}

func TestLeader_ReceivesBatchPublishedDuringElection(t *testing.T) {
	cfg := testConfig(t)
	token := testToken(t)
	rec := newRecorder(true)

	// Publish between lock acquisition and subscription, the window a
	// racing follower can hit.
	raced := func(name string, opts ...channel.Option) (*channel.Channel, error) {
		other, err := channel.Open(name, opts...)
		if err != nil {
			return nil, err
		}
		payload, _ := argv.Encode([]string{"--raced"})
		if _, err := other.Publish(context.Background(), payload); err != nil {
			return nil, err
		}
		_ = other.Close()
		return channel.Open(name, opts...)
	}

	startLeader(t, cfg, token, rec, WithChannelOpener(raced))

	got := rec.waitFor(t, 1)
	if diff := cmp.Diff([][]string{{"--raced"}}, got); diff != "" {
		t.Errorf("batches mismatch (-want +got):\n%s", diff)
	}
}

func TestLeader_DropsUndecodableBatch(t *testing.T) {
	cfg := testConfig(t)
	token := testToken(t)
	rec := newRecorder(true)

	bus := event.NewBus(nil)
	dropped := make(chan event.BatchDroppedEvent, 1)
	bus.Subscribe(event.TypeBatchDropped, func(e event.Event) {
		dropped <- e.(event.BatchDroppedEvent)
	})

	leader := startLeader(t, cfg, token, rec, WithBus(bus))

	raw, err := channel.Open(leader.Identity().ChannelName(), channel.WithDir(cfg.Channel.Dir))
	if err != nil {
		t.Fatal(err)
	}
	defer raw.Close()
	if _, err := raw.Publish(context.Background(), []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	select {
	case <-dropped:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a batch.dropped event")
	}

	follower := New(cfg, token, nil, WithArgSource(staticArgs("--after")))
	if follower.InitializeAsFirstInstance(context.Background()) {
		t.Fatal("follower should not become leader")
	}
	got := rec.waitFor(t, 1)
	if diff := cmp.Diff([][]string{{"--after"}}, got); diff != "" {
		t.Errorf("leader should keep serving after a bad batch (-want +got):\n%s", diff)
	}
}

func TestLeader_RecoversActivatorPanic(t *testing.T) {
	cfg := testConfig(t)
	cfg.Follower.RequireAck = true
	token := testToken(t)

	var calls atomic.Int32
	activator := ActivatorFunc(func(args []string) bool {
		if calls.Add(1) == 1 {
			panic("window gone")
		}
		return true
	})
	startLeader(t, cfg, token, activator)

	first := New(cfg, token, nil, WithArgSource(staticArgs("one")))
	res, err := first.Initialize(context.Background())
	if err != nil {
		t.Fatalf("first Initialize: %v", err)
	}
	if res.Delivery != DeliveryRejected {
		t.Errorf("panicking activator should reject, got %v", res.Delivery)
	}

	second := New(cfg, token, nil, WithArgSource(staticArgs("two")))
	res, err = second.Initialize(context.Background())
	if err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if res.Delivery != DeliveryAcknowledged {
		t.Errorf("second Delivery = %v, want acknowledged", res.Delivery)
	}
}

func TestLeader_EmitsEvents(t *testing.T) {
	cfg := testConfig(t)
	token := testToken(t)

	bus := event.NewBus(nil)
	var mu sync.Mutex
	var types []string
	bus.SubscribeAll(func(e event.Event) {
		mu.Lock()
		types = append(types, e.EventType())
		mu.Unlock()
	})

	rec := newRecorder(true)
	leader := New(cfg, token, rec, WithBus(bus))
	if !leader.InitializeAsFirstInstance(context.Background()) {
		t.Fatal("expected leader")
	}
	follower := New(cfg, token, nil, WithArgSource(staticArgs("a")), WithBus(bus))
	follower.InitializeAsFirstInstance(context.Background())
	rec.waitFor(t, 1)

	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		n := len(types)
		mu.Unlock()
		if n >= 3 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	_ = leader.Cleanup()

	mu.Lock()
	defer mu.Unlock()
	for _, want := range []string{event.TypeLeaderElected, event.TypeFollowerSignal, event.TypeBatchReceived, event.TypeInstanceCleanup} {
		found := false
		for _, got := range types {
			if got == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing %s event in %v", want, types)
		}
	}
}

func TestInitialize_LongToken(t *testing.T) {
	cfg := testConfig(t)

	for _, token := range []string{
		strings.Repeat("a", 250),
		strings.Repeat("日本語:", 60),
	} {
		rec := newRecorder(true)
		leader := startLeader(t, cfg, token, rec)
		if path := LockPath(cfg, leader.Identity()); len(filepath.Base(path)) > 255 {
			t.Errorf("lock file name has %d bytes", len(filepath.Base(path)))
		}

		follower := New(cfg, token, nil, WithArgSource(staticArgs("--long")))
		if follower.InitializeAsFirstInstance(context.Background()) {
			t.Fatal("follower should not become leader")
		}
		_ = follower.Cleanup()

		if diff := cmp.Diff([][]string{{"--long"}}, rec.waitFor(t, 1)); diff != "" {
			t.Errorf("batches mismatch (-want +got):\n%s", diff)
		}
		_ = leader.Cleanup()
	}
}

func TestInitialize_Twice(t *testing.T) {
	cfg := testConfig(t)
	leader := startLeader(t, cfg, testToken(t), nil)

	res, err := leader.Initialize(context.Background())
	if !errors.Is(err, errors.ErrAlreadyInitialized) {
		t.Fatalf("second Initialize error = %v, want ErrAlreadyInitialized", err)
	}
	if res.Role != RoleLeader {
		t.Errorf("second Initialize role = %v, want leader", res.Role)
	}
	if !leader.InitializeAsFirstInstance(context.Background()) {
		t.Error("InitializeAsFirstInstance after Initialize should still report leadership")
	}
}

func TestInitialize_EmptyToken(t *testing.T) {
	c := New(testConfig(t), "  ", nil)
	if _, err := c.Initialize(context.Background()); !errors.Is(err, errors.ErrInvalidIdentity) {
		t.Fatalf("Initialize error = %v, want ErrInvalidIdentity", err)
	}
	if c.InitializeAsFirstInstance(context.Background()) {
		t.Error("an invalid identity must not lead")
	}
}

func TestCleanup(t *testing.T) {
	t.Run("never initialized", func(t *testing.T) {
		c := New(testConfig(t), testToken(t), nil)
		if err := c.Cleanup(); err != nil {
			t.Fatalf("first Cleanup: %v", err)
		}
		if err := c.Cleanup(); err != nil {
			t.Fatalf("second Cleanup: %v", err)
		}
	})

	t.Run("follower", func(t *testing.T) {
		cfg := testConfig(t)
		token := testToken(t)
		startLeader(t, cfg, token, nil)

		follower := New(cfg, token, nil, WithArgSource(staticArgs("x")))
		follower.InitializeAsFirstInstance(context.Background())
		if err := follower.Cleanup(); err != nil {
			t.Fatalf("first Cleanup: %v", err)
		}
		if err := follower.Cleanup(); err != nil {
			t.Fatalf("second Cleanup: %v", err)
		}
	})

	t.Run("leader releases leadership", func(t *testing.T) {
		cfg := testConfig(t)
		token := testToken(t)

		leader := New(cfg, token, nil)
		if !leader.InitializeAsFirstInstance(context.Background()) {
			t.Fatal("expected leader")
		}
		if err := leader.Cleanup(); err != nil {
			t.Fatalf("first Cleanup: %v", err)
		}
		if err := leader.Cleanup(); err != nil {
			t.Fatalf("second Cleanup: %v", err)
		}

		next := New(cfg, token, nil)
		if !next.InitializeAsFirstInstance(context.Background()) {
			t.Fatal("leadership should be available after Cleanup")
		}
		_ = next.Cleanup()
	})
}

func TestProbe(t *testing.T) {
	cfg := testConfig(t)
	token := testToken(t)

	held, err := Probe(cfg, token)
	if err != nil || held {
		t.Fatalf("Probe without leader = %v, %v; want false", held, err)
	}

	leader := startLeader(t, cfg, token, nil)
	held, err = Probe(cfg, token)
	if err != nil || !held {
		t.Fatalf("Probe with leader = %v, %v; want true", held, err)
	}

	_ = leader.Cleanup()
	held, err = Probe(cfg, token)
	if err != nil || held {
		t.Fatalf("Probe after Cleanup = %v, %v; want false", held, err)
	}
}

func TestProbe_DoesNotAffectElection(t *testing.T) {
	cfg := testConfig(t)
	token := testToken(t)

	stop := make(chan struct{})
	var wg conc.WaitGroup
	wg.Go(func() {
		for {
			select {
			case <-stop:
				return
			default:
				_, _ = Probe(cfg, token)
			}
		}
	})
	defer func() {
		close(stop)
		wg.Wait()
	}()

	for i := range 200 {
		c := New(cfg, token, nil, WithArgSource(staticArgs()))
		res, err := c.Initialize(context.Background())
		if err != nil || res.Role != RoleLeader {
			_ = c.Cleanup()
			t.Fatalf("round %d: role = %v, err = %v; want leader", i, res.Role, err)
		}
		if err := c.Cleanup(); err != nil {
			t.Fatalf("round %d: Cleanup: %v", i, err)
		}
	}
}

func TestRetryStrategy(t *testing.T) {
	f := config.FollowerConfig{
		BackoffInitial: time.Millisecond,
		BackoffMax:     50 * time.Millisecond,
	}
	s := retryStrategy(f)

	tests := []struct {
		n    uint
		want time.Duration
	}{
		{0, time.Millisecond},
		{1, 2 * time.Millisecond},
		{3, 8 * time.Millisecond},
		{6, 50 * time.Millisecond},
		{49, 50 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := s(nil, tt.n); got != tt.want {
			t.Errorf("delay(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}

	f.Jitter = true
	jittered := retryStrategy(f)
	for n := uint(0); n < 50; n++ {
		if d := jittered(nil, n); d < 0 || d > f.BackoffMax {
			t.Fatalf("jittered delay(%d) = %v, outside [0, %v]", n, d, f.BackoffMax)
		}
	}
}

func TestRoleAndDeliveryStrings(t *testing.T) {
	for role, want := range map[Role]string{RoleNone: "none", RoleLeader: "leader", RoleFollower: "follower"} {
		if role.String() != want {
			t.Errorf("Role(%d).String() = %q, want %q", role, role.String(), want)
		}
	}
	deliveries := []Delivery{DeliveryNone, DeliveryPublished, DeliveryAcknowledged, DeliveryRejected, DeliveryLeaderUnreachable, DeliveryGaveUp}
	seen := map[string]bool{}
	for _, d := range deliveries {
		s := d.String()
		if s == "unknown" || seen[s] {
			t.Errorf("Delivery(%d).String() = %q, want a distinct name", d, s)
		}
		seen[s] = true
	}
}

// TestHelperLeader is not a real test. It is run as a child process by
// TestLeaderCrash_LeadershipRecovered to hold leadership until killed.
func TestHelperLeader(t *testing.T) {
	dir := os.Getenv("SINGLETON_HELPER_DIR")
	if dir == "" {
		t.Skip("helper process only")
	}
	cfg := *config.Default()
	cfg.Channel.Dir = dir

	leader := New(cfg, os.Getenv("SINGLETON_HELPER_TOKEN"), nil)
	if !leader.InitializeAsFirstInstance(context.Background()) {
		os.Exit(2)
	}
	fmt.Println("leader")
	time.Sleep(time.Minute)
	os.Exit(0)
}

func TestLeaderCrash_LeadershipRecovered(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns a child process")
	}
	cfg := testConfig(t)
	token := testToken(t)

	cmd := exec.Command(os.Args[0], "-test.run=^TestHelperLeader$")
	cmd.Env = append(os.Environ(),
		"SINGLETON_HELPER_DIR="+cfg.Channel.Dir,
		"SINGLETON_HELPER_TOKEN="+token,
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.Fatalf("StdoutPipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		t.Fatalf("start helper: %v", err)
	}

	line, err := bufio.NewReader(stdout).ReadString('\n')
	if err != nil || strings.TrimSpace(line) != "leader" {
		_ = cmd.Process.Kill()
		t.Fatalf("helper did not become leader: %q, %v", line, err)
	}

	if held, _ := Probe(cfg, token); !held {
		_ = cmd.Process.Kill()
		t.Fatal("helper should hold leadership")
	}

	// Kill without Cleanup, simulating a crash.
	if err := cmd.Process.Kill(); err != nil {
		t.Fatalf("kill helper: %v", err)
	}
	_ = cmd.Wait()

	if held, err := Probe(cfg, token); err != nil || held {
		t.Fatalf("Probe after crash = %v, %v; want false", held, err)
	}

	next := New(cfg, token, nil)
	if !next.InitializeAsFirstInstance(context.Background()) {
		t.Fatal("a new instance must become leader after the old one dies")
	}
	_ = next.Cleanup()
}
