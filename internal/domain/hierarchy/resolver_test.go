package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telstock/internal/core/id"
)

func newUser(role Role) *User {
	return &User{
		ID:       id.New(),
		Name:     string(role),
		Role:     role,
		IsActive: true,
	}
}

func linkTL(tl *User, rm *User) *User {
	tl.RegionalManagerID = &rm.ID
	return tl
}

func linkFO(fo *User, tl *User) *User {
	fo.TeamLeaderID = &tl.ID
	return fo
}

func ids(users []*User) []id.ID {
	out := make([]id.ID, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}

func TestEligibleRecipients_Admin(t *testing.T) {
	admin := newUser(RoleAdmin)
	rm1 := newUser(RoleRegionalManager)
	rm2 := newUser(RoleRegionalManager)
	tl := newUser(RoleTeamLeader)

	got := EligibleRecipients(admin, []*User{admin, rm1, rm2, tl})

	assert.ElementsMatch(t, ids([]*User{rm1, rm2}), ids(got),
		"admin allocates to regional managers only")
}

func TestEligibleRecipients_AdminFallbacks(t *testing.T) {
	admin := newUser(RoleAdmin)
	tl := newUser(RoleTeamLeader)
	fo := newUser(RoleFieldOfficer)

	t.Run("no regional managers falls back to non-admins", func(t *testing.T) {
		got := EligibleRecipients(admin, []*User{admin, tl, fo})
		assert.ElementsMatch(t, ids([]*User{tl, fo}), ids(got))
	})

	t.Run("only admins fall back to everyone but self", func(t *testing.T) {
		other := newUser(RoleAdmin)
		got := EligibleRecipients(admin, []*User{admin, other})
		assert.ElementsMatch(t, ids([]*User{other}), ids(got))
	})

	t.Run("alone in the system gets nobody", func(t *testing.T) {
		got := EligibleRecipients(admin, []*User{admin})
		assert.Empty(t, got)
	})
}

func TestEligibleRecipients_RegionalManager(t *testing.T) {
	rm := newUser(RoleRegionalManager)
	otherRM := newUser(RoleRegionalManager)
	myTL := linkTL(newUser(RoleTeamLeader), rm)
	foreignTL := linkTL(newUser(RoleTeamLeader), otherRM)
	fo := newUser(RoleFieldOfficer)

	t.Run("linked team leaders win", func(t *testing.T) {
		got := EligibleRecipients(rm, []*User{rm, otherRM, myTL, foreignTL, fo})
		assert.ElementsMatch(t, ids([]*User{myTL}), ids(got))
	})

	t.Run("no linked team leaders widens to all team leaders", func(t *testing.T) {
		got := EligibleRecipients(rm, []*User{rm, otherRM, foreignTL, fo})
		assert.ElementsMatch(t, ids([]*User{foreignTL}), ids(got))
	})

	t.Run("no team leaders at all widens to non-admins", func(t *testing.T) {
		got := EligibleRecipients(rm, []*User{rm, otherRM, fo})
		assert.ElementsMatch(t, ids([]*User{otherRM, fo}), ids(got))
	})
}

func TestEligibleRecipients_TeamLeader(t *testing.T) {
	tl := newUser(RoleTeamLeader)
	otherTL := newUser(RoleTeamLeader)
	myFO := linkFO(newUser(RoleFieldOfficer), tl)
	foreignFO := linkFO(newUser(RoleFieldOfficer), otherTL)

	t.Run("linked field officers win", func(t *testing.T) {
		got := EligibleRecipients(tl, []*User{tl, otherTL, myFO, foreignFO})
		assert.ElementsMatch(t, ids([]*User{myFO}), ids(got))
	})

	t.Run("no linked officers widens to all field officers", func(t *testing.T) {
		got := EligibleRecipients(tl, []*User{tl, otherTL, foreignFO})
		assert.ElementsMatch(t, ids([]*User{foreignFO}), ids(got))
	})

	t.Run("no field officers widens to everyone but self", func(t *testing.T) {
		admin := newUser(RoleAdmin)
		got := EligibleRecipients(tl, []*User{tl, otherTL, admin})
		assert.ElementsMatch(t, ids([]*User{otherTL, admin}), ids(got))
	})
}

func TestEligibleRecipients_FieldOfficerHasNone(t *testing.T) {
	fo := newUser(RoleFieldOfficer)
	others := []*User{fo, newUser(RoleAdmin), newUser(RoleTeamLeader), newUser(RoleFieldOfficer)}

	assert.Empty(t, EligibleRecipients(fo, others))
}

func TestEligibleRecipients_SkipsInactiveUsers(t *testing.T) {
	admin := newUser(RoleAdmin)
	rm := newUser(RoleRegionalManager)
	fired := newUser(RoleRegionalManager)
	fired.IsActive = false

	got := EligibleRecipients(admin, []*User{admin, rm, fired})

	assert.ElementsMatch(t, ids([]*User{rm}), ids(got))
}

// The fallback chain must never shrink the result below what the next tier
// would provide: an empty tier is skipped, not returned.
func TestEligibleRecipients_FallbackMonotonicity(t *testing.T) {
	admin := newUser(RoleAdmin)
	tl := newUser(RoleTeamLeader)

	got := EligibleRecipients(admin, []*User{admin, tl})

	require.NotEmpty(t, got, "non-empty fallback tier exists, result must not be empty")
	assert.Equal(t, tl.ID, got[0].ID)
}

func TestSubordinates(t *testing.T) {
	admin := newUser(RoleAdmin)
	rm1 := newUser(RoleRegionalManager)
	rm2 := newUser(RoleRegionalManager)
	tl1 := linkTL(newUser(RoleTeamLeader), rm1)
	tl2 := linkTL(newUser(RoleTeamLeader), rm2)
	fo1 := linkFO(newUser(RoleFieldOfficer), tl1)
	fo2 := linkFO(newUser(RoleFieldOfficer), tl2)
	all := []*User{admin, rm1, rm2, tl1, tl2, fo1, fo2}

	t.Run("admin supervises everyone below", func(t *testing.T) {
		got := Subordinates(admin, all)
		assert.ElementsMatch(t, ids([]*User{rm1, rm2, tl1, tl2, fo1, fo2}), ids(got))
	})

	t.Run("regional manager supervises own subtree", func(t *testing.T) {
		got := Subordinates(rm1, all)
		assert.ElementsMatch(t, ids([]*User{tl1, fo1}), ids(got))
	})

	t.Run("team leader supervises own officers", func(t *testing.T) {
		got := Subordinates(tl1, all)
		assert.ElementsMatch(t, ids([]*User{fo1}), ids(got))
	})

	t.Run("field officer supervises nobody", func(t *testing.T) {
		assert.Empty(t, Subordinates(fo1, all))
	})
}

func TestIsSubordinate(t *testing.T) {
	rm := newUser(RoleRegionalManager)
	tl := linkTL(newUser(RoleTeamLeader), rm)
	fo := linkFO(newUser(RoleFieldOfficer), tl)
	stranger := newUser(RoleFieldOfficer)
	all := []*User{rm, tl, fo, stranger}

	assert.True(t, IsSubordinate(rm, fo.ID, all), "indirect subordinate")
	assert.True(t, IsSubordinate(rm, tl.ID, all), "direct subordinate")
	assert.False(t, IsSubordinate(rm, stranger.ID, all))
	assert.False(t, IsSubordinate(tl, rm.ID, all), "upward is never subordinate")
}

func TestUserNormalize(t *testing.T) {
	u := &User{Name: "  Jane Doe ", Email: " Jane.Doe@Example.COM ", Region: " North "}
	u.Normalize()

	assert.Equal(t, "Jane Doe", u.Name)
	assert.Equal(t, "jane.doe@example.com", u.Email)
	assert.Equal(t, "North", u.Region)
}
