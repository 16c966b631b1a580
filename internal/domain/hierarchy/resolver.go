package hierarchy

import "telstock/internal/core/id"

// EligibleRecipients computes the set of users the actor may allocate stock
// to. Recipients always sit one tier down when the hierarchy data is
// complete; each role carries a fallback chain for incomplete data, widening
// the candidate set rather than returning nothing:
//
//	admin:            regional managers → any non-admin → everyone but self
//	regional_manager: own team leaders  → all team leaders → non-admins but self
//	team_leader:      own field officers → all field officers → everyone but self
//	field_officer:    nobody (leaf tier, sells only)
//
// The widening is monotonic: a tier is only consulted when every tier before
// it came up empty.
func EligibleRecipients(actor *User, all []*User) []*User {
	if actor == nil {
		return nil
	}

	switch actor.Role {
	case RoleAdmin:
		return firstNonEmpty(
			filter(all, byRole(RoleRegionalManager)),
			filter(all, not(byRole(RoleAdmin))),
			filter(all, notSelf(actor.ID)),
		)

	case RoleRegionalManager:
		return firstNonEmpty(
			filter(all, byRole(RoleTeamLeader), linkedToRM(actor.ID)),
			filter(all, byRole(RoleTeamLeader)),
			filter(all, not(byRole(RoleAdmin)), notSelf(actor.ID)),
		)

	case RoleTeamLeader:
		return firstNonEmpty(
			filter(all, byRole(RoleFieldOfficer), linkedToTL(actor.ID)),
			filter(all, byRole(RoleFieldOfficer)),
			filter(all, notSelf(actor.ID)),
		)
	}

	return nil
}

// Subordinates computes the actor's direct and indirect subordinates.
// Admin supervises everyone below; a regional manager supervises their
// team leaders plus the field officers under those team leaders; a team
// leader supervises their field officers.
func Subordinates(actor *User, all []*User) []*User {
	if actor == nil {
		return nil
	}

	switch actor.Role {
	case RoleAdmin:
		return filter(all, not(byRole(RoleAdmin)))

	case RoleRegionalManager:
		teamLeaders := filter(all, byRole(RoleTeamLeader), linkedToRM(actor.ID))
		tlIDs := make(map[id.ID]bool, len(teamLeaders))
		for _, tl := range teamLeaders {
			tlIDs[tl.ID] = true
		}
		officers := filter(all, byRole(RoleFieldOfficer), func(u *User) bool {
			return u.TeamLeaderID != nil && tlIDs[*u.TeamLeaderID]
		})
		return append(teamLeaders, officers...)

	case RoleTeamLeader:
		return filter(all, byRole(RoleFieldOfficer), linkedToTL(actor.ID))
	}

	return nil
}

// IsSubordinate reports whether candidate is in the actor's subordinate set.
func IsSubordinate(actor *User, candidateID id.ID, all []*User) bool {
	for _, u := range Subordinates(actor, all) {
		if u.ID == candidateID {
			return true
		}
	}
	return false
}

// --- predicates ---

type predicate func(*User) bool

func byRole(role Role) predicate {
	return func(u *User) bool { return u.Role == role }
}

func not(p predicate) predicate {
	return func(u *User) bool { return !p(u) }
}

func notSelf(self id.ID) predicate {
	return func(u *User) bool { return u.ID != self }
}

func linkedToRM(rmID id.ID) predicate {
	return func(u *User) bool {
		return u.RegionalManagerID != nil && *u.RegionalManagerID == rmID
	}
}

func linkedToTL(tlID id.ID) predicate {
	return func(u *User) bool {
		return u.TeamLeaderID != nil && *u.TeamLeaderID == tlID
	}
}

func filter(users []*User, preds ...predicate) []*User {
	var out []*User
outer:
	for _, u := range users {
		if !u.IsActive {
			continue
		}
		for _, p := range preds {
			if !p(u) {
				continue outer
			}
		}
		out = append(out, u)
	}
	return out
}

func firstNonEmpty(tiers ...[]*User) []*User {
	for _, tier := range tiers {
		if len(tier) > 0 {
			return tier
		}
	}
	return nil
}
