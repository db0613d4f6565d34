// Package relation keeps the User, Calendar and Invitation back-references
// consistent and runs multi-aggregate mutations as one unit of work.
//
// Every edge between two aggregates is stored on both sides. The helpers in
// this file are the only code that mutates those arrays; each one updates
// both sides together and keeps the arrays free of duplicates.
package relation

import (
	"github.com/google/uuid"

	"github.com/calshare/server/internal/model"
)

// LinkMembership adds user to the calendar's members and the calendar to the
// user's calendars. It reports whether either side changed.
func LinkMembership(user *model.User, calendar *model.Calendar) bool {
	a := model.AddID(&calendar.MemberIDs, user.ID)
	b := model.AddID(&user.CalendarIDs, calendar.ID)
	return a || b
}

// UnlinkMembership removes user from the calendar's members and admins and
// the calendar from the user's calendars. The founder edge is never removed.
func UnlinkMembership(user *model.User, calendar *model.Calendar) bool {
	if calendar.IsFounder(user.ID) {
		return false
	}
	a := model.RemoveID(&calendar.MemberIDs, user.ID)
	b := model.RemoveID(&calendar.AdminIDs, user.ID)
	c := model.RemoveID(&user.CalendarIDs, calendar.ID)
	return a || b || c
}

// DetachCalendar strips the calendar from a user's calendars without touching
// the calendar itself, for a calendar that is about to be deleted.
func DetachCalendar(user *model.User, calendarID uuid.UUID) bool {
	return model.RemoveID(&user.CalendarIDs, calendarID)
}

// LinkInvitation records a pending invitation on its invitee.
func LinkInvitation(user *model.User, invitation *model.Invitation) bool {
	return model.AddID(&user.InvitationIDs, invitation.ID)
}

// UnlinkInvitation drops an invitation from its invitee's pending list.
func UnlinkInvitation(user *model.User, invitationID uuid.UUID) bool {
	return model.RemoveID(&user.InvitationIDs, invitationID)
}

// GrantAdmin makes a member an admin. Non-members are left unchanged.
func GrantAdmin(calendar *model.Calendar, userID uuid.UUID) bool {
	if !calendar.IsMember(userID) {
		return false
	}
	return model.AddID(&calendar.AdminIDs, userID)
}

// RevokeAdmin removes admin rights from a user. The founder stays an admin.
func RevokeAdmin(calendar *model.Calendar, userID uuid.UUID) bool {
	if calendar.IsFounder(userID) {
		return false
	}
	return model.RemoveID(&calendar.AdminIDs, userID)
}

// FoundCalendar wires a freshly created calendar to its founder, who becomes
// its sole member and admin.
func FoundCalendar(founder *model.User, calendar *model.Calendar) {
	calendar.FounderID = founder.ID
	model.AddID(&calendar.AdminIDs, founder.ID)
	LinkMembership(founder, calendar)
}
