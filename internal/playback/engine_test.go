package playback

import (
	"errors"
	"testing"

	"github.com/sharetube/multiview/internal/domain"
	"github.com/sharetube/multiview/internal/media/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddStreamSeedsFromDepartingMain(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	elA := addMounted(t, e, "a")
	_, err := e.SetVolume(80)
	require.NoError(t, err)

	elB := addMounted(t, e, "b")

	mainID, ok := e.Streams().MainID()
	require.True(t, ok)
	assert.Equal(t, "b", mainID)
	assert.Equal(t, 80, e.Authority().Get("b"))

	stB, _ := e.Store().Get("b")
	assert.Equal(t, 80, stB.Volume)
	assert.False(t, stB.IsMuted)
	assert.InDelta(t, 0.8, elB.Volume(), 1e-9)
	assert.False(t, elB.Muted())
	assert.False(t, elB.Paused())

	stA, _ := e.Store().Get("a")
	assert.Equal(t, 0, stA.Volume)
	assert.True(t, stA.IsMuted)
	assert.True(t, stA.IsPlaying)
	assert.Zero(t, elA.Volume())
	assert.True(t, elA.Muted())
	assert.False(t, elA.Paused(), "demoted stream keeps playing")

	requireInvariants(t, e)
}

func TestAddStreamRejectedAtCapacity(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	addMounted(t, e, "a")
	addMounted(t, e, "b")
	addMounted(t, e, "c")

	before := e.View()
	err := e.AddStream(&domain.Stream{ID: "d"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStreamsLimitReached))
	assert.Equal(t, before, e.View(), "rejected add must not mutate state")
	_, ok := e.Authority().Lookup("d")
	assert.False(t, ok)
}

func TestPausedMainKeepsVolume(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	el := addMounted(t, e, "a")
	_, err := e.SetVolume(60)
	require.NoError(t, err)

	st, err := e.TogglePlay()
	require.NoError(t, err)
	assert.False(t, st.IsPlaying)
	assert.True(t, el.Paused())
	assert.True(t, el.Muted(), "paused main is protectively muted")
	assert.Equal(t, 60, e.Authority().Get("a"))
	assert.Equal(t, 0, e.Tick(), "paused main is already in shape")

	st, err = e.TogglePlay()
	require.NoError(t, err)
	assert.True(t, st.IsPlaying)
	assert.False(t, el.Paused())
	assert.False(t, el.Muted())
	assert.InDelta(t, 0.6, el.Volume(), 1e-9)
}

func TestVolumeSurvivesPlayToggles(t *testing.T) {
	for v := 0; v <= 100; v += 7 {
		e, _ := newTestEngine(t, nil)
		el := addMounted(t, e, "a")

		_, err := e.SetVolume(v)
		require.NoError(t, err)

		_, err = e.SetPlaying("a", true)
		require.NoError(t, err)
		_, err = e.SetPlaying("a", false)
		require.NoError(t, err)
		e.Tick()
		_, err = e.SetPlaying("a", true)
		require.NoError(t, err)
		e.Tick()

		assert.Equal(t, v, e.Authority().Get("a"), "volume %d", v)
		st, _ := e.Store().Get("a")
		assert.Equal(t, v, st.Volume, "volume %d", v)
		assert.InDelta(t, float64(v)/100, el.Volume(), 1e-9, "volume %d", v)
	}
}

func TestToggleMuteOnlyAffectsMain(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	elA := addMounted(t, e, "a")
	elB := addMounted(t, e, "b")

	st, err := e.ToggleMute()
	require.NoError(t, err)
	assert.True(t, st.IsMuted)
	assert.True(t, elB.Muted())

	st, err = e.ToggleMute()
	require.NoError(t, err)
	assert.False(t, st.IsMuted)
	assert.False(t, elB.Muted())
	assert.True(t, elA.Muted())
	requireInvariants(t, e)
}

func TestSetPlayingRejectsMini(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	addMounted(t, e, "a")
	addMounted(t, e, "b")

	_, err := e.SetPlaying("a", false)
	assert.ErrorIs(t, err, ErrNotMain)
}

func TestRemoveMainPromotesFirstRemaining(t *testing.T) {
	var left bool
	e, _ := newTestEngine(t, &Config{OnLeave: func() { left = true }})

	elA := addMounted(t, e, "a")
	addMounted(t, e, "b")
	_, err := e.SetVolume(55)
	require.NoError(t, err)

	removed, err := e.RemoveStream(1)
	require.NoError(t, err)
	assert.Equal(t, "b", removed.ID)
	assert.False(t, left)

	mainID, _ := e.Streams().MainID()
	assert.Equal(t, "a", mainID)
	_, ok := e.Handles().Get("b")
	assert.False(t, ok)
	_, ok = e.Store().Get("b")
	assert.False(t, ok)
	_, ok = e.Authority().Lookup("b")
	assert.False(t, ok)

	assert.Equal(t, 55, e.Authority().Get("a"), "new main keeps the departing main's volume")
	assert.InDelta(t, 0.55, elA.Volume(), 1e-9)
	assert.False(t, elA.Muted())
	assert.False(t, elA.Paused())
	assert.Equal(t, 0, e.Tick())
	requireInvariants(t, e)

	_, err = e.RemoveStream(0)
	require.NoError(t, err)
	assert.True(t, left, "removing the last stream signals leave")
	assert.Equal(t, 0, e.Streams().Length())
}

func TestRemoveStreamOutOfRange(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	_, err := e.RemoveStream(0)
	assert.ErrorIs(t, err, domain.ErrStreamNotFound)
}

func TestMountResolvesVolumeInPriorityOrder(t *testing.T) {
	e, _ := newTestEngine(t, &Config{LastVolume: 40, HasLastVolume: true})

	require.NoError(t, e.AddStream(&domain.Stream{ID: "a"}))
	el := sim.New(60)
	require.NoError(t, e.Mount("a", el))
	assert.InDelta(t, 0.4, el.Volume(), 1e-9, "last session volume seeds the first stream")
	assert.False(t, el.Paused())

	_, err := e.SetVolume(90)
	require.NoError(t, err)
	e.Unmount("a")

	// no authority entry: the store mirror wins over the last session value
	e.Authority().Forget("a")
	e.Store().Put("a", domain.PlaybackState{IsPlaying: true, Volume: 25})
	el = sim.New(60)
	require.NoError(t, e.Mount("a", el))
	assert.InDelta(t, 0.25, el.Volume(), 1e-9)
}

func TestMountUnknownStream(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	err := e.Mount("nope", sim.New(10))
	assert.ErrorIs(t, err, domain.ErrStreamNotFound)
}

func TestVolumeChosenHook(t *testing.T) {
	var chosen []int
	e, _ := newTestEngine(t, &Config{OnVolumeChosen: func(_ string, v int) { chosen = append(chosen, v) }})

	addMounted(t, e, "a")
	addMounted(t, e, "b")
	_, err := e.SetVolume(33)
	require.NoError(t, err)

	assert.Equal(t, []int{33}, chosen, "only explicit changes are persisted")
}

func TestMediaEventsReResolveFromAuthority(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	elA := addMounted(t, e, "a")
	elB := addMounted(t, e, "b")
	_, err := e.SetVolume(45)
	require.NoError(t, err)

	// platform resets volume then fires play
	elB.ResetVolume(1)
	require.NoError(t, e.HandleMediaEvent("b", EventPlay))
	assert.InDelta(t, 0.45, elB.Volume(), 1e-9)
	st, _ := e.Store().Get("b")
	assert.Equal(t, 45, st.Volume)
	assert.True(t, st.IsPlaying)

	// spurious pause keeps the chosen volume
	elB.ForcePause()
	require.NoError(t, e.HandleMediaEvent("b", EventPause))
	st, _ = e.Store().Get("b")
	assert.False(t, st.IsPlaying)
	assert.Equal(t, 45, st.Volume)
	assert.True(t, elB.Muted())
	assert.Equal(t, 45, e.Authority().Get("b"))

	_, err = e.TogglePlay()
	require.NoError(t, err)
	assert.InDelta(t, 0.45, elB.Volume(), 1e-9)
	assert.False(t, elB.Muted())

	// a mini reporting play with audio is silenced again
	elA.ResetVolume(0.9)
	elA.SetMuted(false)
	require.NoError(t, e.HandleMediaEvent("a", EventPlay))
	assert.Zero(t, elA.Volume())
	assert.True(t, elA.Muted())

	// volumechange on main writes the authority value back
	elB.ResetVolume(0.1)
	require.NoError(t, e.HandleMediaEvent("b", EventVolumeChange))
	assert.InDelta(t, 0.45, elB.Volume(), 1e-9)
}

func TestMediaEventTimeUpdate(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	el := addMounted(t, e, "a")
	el.SetCurrentTime(900)
	require.NoError(t, e.HandleMediaEvent("a", EventTimeUpdate))

	st, _ := e.Store().Get("a")
	assert.InDelta(t, 25.0, st.Progress, 1e-9)
}

func TestMediaEventPlayRejectedLeavesRetryToTick(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	elA := addMounted(t, e, "a")
	addMounted(t, e, "b")

	elA.BlockAutoplay(true)
	elA.ForcePause()
	elA.ResetVolume(0.4)
	elA.SetMuted(false)
	plays := elA.Plays()

	for i := 0; i < 5; i++ {
		require.NoError(t, e.HandleMediaEvent("a", EventPlayRejected))
	}
	assert.Equal(t, plays, elA.Plays())
	assert.True(t, elA.Muted())
	assert.Zero(t, elA.Volume())

	assert.Equal(t, 1, e.Tick())
	assert.Equal(t, plays+1, elA.Plays())
}

func TestMediaEventEdgeCases(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	addMounted(t, e, "a")
	assert.ErrorIs(t, e.HandleMediaEvent("a", MediaEvent("seeked")), ErrUnknownMediaEvent)

	e.Unmount("a")
	assert.NoError(t, e.HandleMediaEvent("a", EventPlay), "late events from unmounted elements are dropped")
}
