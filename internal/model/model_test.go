package model

import (
	"errors"
	"testing"

	"acctview/internal/account"
	"acctview/internal/account/accounttest"
	"acctview/internal/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReadyModel(t *testing.T, q *dispatch.Queue, accounts ...*accounttest.FakeAccount) (*Model, *accounttest.FakeManager) {
	t.Helper()
	mgr := accounttest.NewManager(q, accounts...)
	m := New(mgr)
	q.Drain()
	require.Equal(t, Ready, m.State())
	t.Cleanup(m.Close)
	return m, mgr
}

func TestModel_NotReadyUntilReadinessCompletes(t *testing.T) {
	q := dispatch.NewQueue()
	a := accounttest.NewAccount(q, "alice", "Alice")
	mgr := accounttest.NewManager(q, a)

	m := New(mgr)
	defer m.Close()

	assert.Equal(t, NotReady, m.State())
	assert.Equal(t, 0, m.RowCount())
	assert.Nil(t, m.Data(0, ColumnDisplayName, DisplayRole))

	resets := 0
	m.OnReset(func() { resets++ })
	q.Drain()

	assert.Equal(t, Ready, m.State())
	assert.Equal(t, 1, m.RowCount())
	assert.Equal(t, 1, resets)
}

func TestModel_ReadinessFailureStillBecomesReady(t *testing.T) {
	q := dispatch.NewQueue()
	mgr := accounttest.NewManager(q)
	mgr.FailReadiness(errors.New("bus unavailable"))

	m := New(mgr)
	defer m.Close()
	q.Drain()

	assert.Equal(t, Ready, m.State())
	assert.Equal(t, 0, m.RowCount())
}

func TestModel_ColumnCountAndHeaders(t *testing.T) {
	m, _ := newReadyModel(t, dispatch.NewQueue())

	assert.Equal(t, 13, m.ColumnCount())
	assert.Equal(t, "Valid", m.HeaderData(0, Horizontal, DisplayRole))
	assert.Equal(t, "Display name", m.HeaderData(int(ColumnDisplayName), Horizontal, DisplayRole))
	assert.Equal(t, "Connection", m.HeaderData(12, Horizontal, DisplayRole))
	assert.Nil(t, m.HeaderData(13, Horizontal, DisplayRole))
	assert.Nil(t, m.HeaderData(-1, Horizontal, DisplayRole))
	assert.Nil(t, m.HeaderData(0, Vertical, DisplayRole))
}

func TestModel_DataProjectsEveryColumn(t *testing.T) {
	q := dispatch.NewQueue()
	a := accounttest.NewAccount(q, "alice", "Alice")
	a.SetConnection("/org/freedesktop/Telepathy/Connection/gabble/jabber/alice", account.StatusConnected)
	a.SetPresence(account.Presence{Type: "away", Status: "away"}, true)
	m, _ := newReadyModel(t, q, a)

	want := map[Column]any{
		ColumnValid:                true,
		ColumnEnabled:              true,
		ColumnConnectionManager:    "gabble",
		ColumnProtocolName:         "jabber",
		ColumnDisplayName:          "Alice",
		ColumnNickname:             "alice",
		ColumnConnectAutomatically: false,
		ColumnAutomaticPresence:    "available",
		ColumnCurrentPresence:      "away",
		ColumnRequestedPresence:    "offline",
		ColumnChangingPresence:     true,
		ColumnConnectionStatus:     account.StatusConnected,
		ColumnConnection:           "/org/freedesktop/Telepathy/Connection/gabble/jabber/alice",
	}
	require.Len(t, want, ColumnCount)
	for column, value := range want {
		assert.Equal(t, value, m.Data(0, column, DisplayRole), column.Label())
		assert.Equal(t, value, m.Data(0, column, EditRole), column.Label())
	}
}

func TestModel_ConnectionAbsentWithoutLiveConnection(t *testing.T) {
	q := dispatch.NewQueue()
	m, _ := newReadyModel(t, q, accounttest.NewAccount(q, "alice", "Alice"))

	assert.Nil(t, m.Data(0, ColumnConnection, DisplayRole))
}

func TestModel_DataOutOfRangeIsAbsent(t *testing.T) {
	q := dispatch.NewQueue()
	m, _ := newReadyModel(t, q,
		accounttest.NewAccount(q, "alice", "Alice"),
		accounttest.NewAccount(q, "bob", "Bob"),
	)

	for row := m.RowCount(); row < m.RowCount()+3; row++ {
		for c := Column(0); c < ColumnCount; c++ {
			assert.Nil(t, m.Data(row, c, DisplayRole))
		}
	}
	for c := Column(ColumnCount); c < ColumnCount+3; c++ {
		assert.Nil(t, m.Data(0, c, DisplayRole))
	}
	assert.Nil(t, m.Data(-1, ColumnDisplayName, DisplayRole))
	assert.Nil(t, m.Data(0, Column(-1), DisplayRole))
}

func TestModel_DataOtherRolesAbsent(t *testing.T) {
	q := dispatch.NewQueue()
	m, _ := newReadyModel(t, q, accounttest.NewAccount(q, "alice", "Alice"))

	assert.Nil(t, m.Data(0, ColumnDisplayName, ToolTipRole))
	assert.Nil(t, m.Data(0, ColumnDisplayName, DecorationRole))
}

func TestModel_EditableColumns(t *testing.T) {
	editable := []Column{}
	for c := Column(-1); c <= ColumnCount; c++ {
		if Editable(c) {
			editable = append(editable, c)
		}
	}
	assert.Equal(t, []Column{ColumnEnabled, ColumnDisplayName, ColumnNickname}, editable)
}

func TestModel_SetDataRejectsReadOnlyColumns(t *testing.T) {
	q := dispatch.NewQueue()
	a := accounttest.NewAccount(q, "alice", "Alice")
	m, _ := newReadyModel(t, q, a)

	for c := Column(0); c < ColumnCount; c++ {
		if Editable(c) {
			continue
		}
		assert.False(t, m.SetData(0, c, "x", EditRole), c.Label())
	}
	assert.Empty(t, a.Calls())
}

func TestModel_SetDataRejectsWrongRoleAndRange(t *testing.T) {
	q := dispatch.NewQueue()
	a := accounttest.NewAccount(q, "alice", "Alice")
	b := accounttest.NewAccount(q, "bob", "Bob")
	m, _ := newReadyModel(t, q, a, b)

	assert.False(t, m.SetData(0, ColumnDisplayName, "x", DisplayRole))
	assert.False(t, m.SetData(5, ColumnEnabled, true, EditRole))
	assert.False(t, m.SetData(-1, ColumnEnabled, true, EditRole))
	assert.False(t, m.SetData(0, Column(ColumnCount), true, EditRole))

	assert.Equal(t, 2, m.RowCount())
	assert.Empty(t, a.Calls())
	assert.Empty(t, b.Calls())
}

func TestModel_SetDataIssuesCallWithoutTouchingCache(t *testing.T) {
	q := dispatch.NewQueue()
	a := accounttest.NewAccount(q, "alice", "Alice")
	m, _ := newReadyModel(t, q, a)

	assert.True(t, m.SetData(0, ColumnEnabled, "false", EditRole))
	assert.True(t, m.SetData(0, ColumnDisplayName, "Alice W.", EditRole))
	assert.True(t, m.SetData(0, ColumnNickname, 42, EditRole))

	assert.Equal(t, []accounttest.Call{
		{Method: "SetEnabled", Value: false},
		{Method: "SetDisplayName", Value: "Alice W."},
		{Method: "SetNickname", Value: "42"},
	}, a.Calls())

	// Not applied until the framework gets a turn.
	assert.Equal(t, "Alice", m.Data(0, ColumnDisplayName, DisplayRole))
	assert.Equal(t, true, m.Data(0, ColumnEnabled, DisplayRole))
}

func TestModel_WriteRoundTrip(t *testing.T) {
	q := dispatch.NewQueue()
	a := accounttest.NewAccount(q, "alice", "Alice")
	m, _ := newReadyModel(t, q, a)

	resets := 0
	m.OnReset(func() { resets++ })

	op, ok := m.SetDataPending(0, ColumnNickname, "ally", EditRole)
	require.True(t, ok)
	require.NotNil(t, op)
	q.Drain()

	assert.True(t, op.IsFinished())
	assert.NoError(t, op.Err())
	assert.Equal(t, 1, resets)
	assert.Equal(t, "ally", m.Data(0, ColumnNickname, DisplayRole))

	require.True(t, m.SetData(0, ColumnEnabled, false, EditRole))
	q.Drain()
	assert.Equal(t, false, m.Data(0, ColumnEnabled, DisplayRole))
	assert.Equal(t, 2, resets)
}

func TestModel_ScenarioNewAccountThenRename(t *testing.T) {
	q := dispatch.NewQueue()
	m, mgr := newReadyModel(t, q)
	assert.Equal(t, 0, m.RowCount())

	a := accounttest.NewAccount(q, "a", "A")
	mgr.Add(a)
	assert.Equal(t, 1, m.RowCount())
	assert.Equal(t, "A", m.Data(0, ColumnDisplayName, DisplayRole))

	require.True(t, m.SetData(0, ColumnDisplayName, "Bob", EditRole))
	assert.Equal(t, []accounttest.Call{{Method: "SetDisplayName", Value: "Bob"}}, a.Calls())
	q.Drain()

	assert.Equal(t, 1, m.RowCount())
	assert.Equal(t, "Bob", m.Data(0, ColumnDisplayName, DisplayRole))
}

func TestModel_SubscriptionsExactlyOncePerAccount(t *testing.T) {
	q := dispatch.NewQueue()
	a := accounttest.NewAccount(q, "alice", "Alice")
	b := accounttest.NewAccount(q, "bob", "Bob")
	m, mgr := newReadyModel(t, q, a, b)

	c := accounttest.NewAccount(q, "carol", "Carol")
	mgr.Add(c)
	mgr.Add(accounttest.NewAccount(q, "dave", "Dave"))
	require.True(t, m.SetData(1, ColumnNickname, "bobby", EditRole))
	q.Drain()

	assert.Equal(t, 4, m.RowCount())
	for _, acc := range []*accounttest.FakeAccount{a, b, c} {
		state, name, nick := acc.SignalSubscribers()
		assert.Equal(t, 1, state)
		assert.Equal(t, 1, name)
		assert.Equal(t, 1, nick)
	}
}

func TestModel_RemovedAccountLosesSubscriptions(t *testing.T) {
	q := dispatch.NewQueue()
	a := accounttest.NewAccount(q, "alice", "Alice")
	b := accounttest.NewAccount(q, "bob", "Bob")
	m, mgr := newReadyModel(t, q, a, b)

	mgr.Remove(a)

	assert.Equal(t, 1, m.RowCount())
	assert.Equal(t, "Bob", m.Data(0, ColumnDisplayName, DisplayRole))
	state, name, nick := a.SignalSubscribers()
	assert.Zero(t, state+name+nick)
}

func TestModel_NewAccountBeforeReadinessIsDeferred(t *testing.T) {
	q := dispatch.NewQueue()
	mgr := accounttest.NewManager(q)
	m := New(mgr)
	defer m.Close()

	mgr.Add(accounttest.NewAccount(q, "early", "Early"))
	assert.Equal(t, NotReady, m.State())
	assert.Equal(t, 0, m.RowCount())

	q.Drain()
	assert.Equal(t, 1, m.RowCount())
}

func TestModel_ResetNotificationsPaired(t *testing.T) {
	q := dispatch.NewQueue()
	a := accounttest.NewAccount(q, "alice", "Alice")
	m, _ := newReadyModel(t, q, a)

	var events []string
	m.OnAboutToReset(func() { events = append(events, "about") })
	m.OnReset(func() { events = append(events, "reset") })

	a.NicknameChanged().Emit("x")
	assert.Equal(t, []string{"about", "reset"}, events)
}

func TestModel_CloseDisconnectsEverything(t *testing.T) {
	q := dispatch.NewQueue()
	a := accounttest.NewAccount(q, "alice", "Alice")
	m, mgr := newReadyModel(t, q, a)

	m.Close()

	assert.Equal(t, 0, m.RowCount())
	assert.Zero(t, mgr.NewAccount().Subscribers())
	state, name, nick := a.SignalSubscribers()
	assert.Zero(t, state+name+nick)

	mgr.Add(accounttest.NewAccount(q, "bob", "Bob"))
	assert.Equal(t, 0, m.RowCount())
}

func TestParseColumn(t *testing.T) {
	cases := map[string]Column{
		"display-name":          ColumnDisplayName,
		"DisplayName":           ColumnDisplayName,
		"nick_name":             ColumnNickname,
		"nickname":              ColumnNickname,
		"Enabled":               ColumnEnabled,
		"connection status":     ColumnConnectionStatus,
		"cm":                    ColumnConnectionManager,
		"protocol":              ColumnProtocolName,
		"connect-automatically": ColumnConnectAutomatically,
	}
	for raw, want := range cases {
		got, ok := ParseColumn(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := ParseColumn("avatar")
	assert.False(t, ok)
	_, ok = ParseColumn("")
	assert.False(t, ok)
}

func TestToBool(t *testing.T) {
	assert.True(t, toBool(true))
	assert.True(t, toBool("true"))
	assert.True(t, toBool("yes"))
	assert.True(t, toBool(1))
	assert.False(t, toBool(nil))
	assert.False(t, toBool(""))
	assert.False(t, toBool("0"))
	assert.False(t, toBool("False"))
	assert.False(t, toBool(0.0))
}
