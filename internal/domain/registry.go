package domain

import (
	"go.uber.org/zap"

	"github.com/calshare/server/internal/domain/activity"
	"github.com/calshare/server/internal/domain/calendar"
	"github.com/calshare/server/internal/domain/identity"
	"github.com/calshare/server/internal/domain/invitation"
	"github.com/calshare/server/internal/domain/relation"
	"github.com/calshare/server/internal/port/outbound"
	"github.com/calshare/server/internal/shared/events"
)

// Domain holds all domain services.
// This is the central registry for all business logic.
type Domain struct {
	// Identity registers users and resolves bearer tokens.
	Identity *identity.Domain

	// Calendar owns calendars, roles and the task catalog.
	Calendar *calendar.Domain

	// Invitation owns the invitation ledger.
	Invitation *invitation.Domain

	// Activity owns weekly activities and their todos.
	Activity *activity.Domain

	// Coordinator runs every multi-aggregate mutation.
	Coordinator *relation.Coordinator
}

// OutboundPorts holds all outbound port implementations.
type OutboundPorts struct {
	// Storage ports
	UserDB       outbound.UserDatabasePort
	CalendarDB   outbound.CalendarDatabasePort
	TaskDB       outbound.TaskDatabasePort
	InvitationDB outbound.InvitationDatabasePort
	ActivityDB   outbound.ActivityDatabasePort
	TodoDB       outbound.TodoDatabasePort
	Tx           outbound.TransactionPort

	// Optional; nil runs units of work without aggregate locks.
	Lock outbound.LockPort

	// Auth ports
	Hasher outbound.PasswordHasherPort
	JWT    outbound.JWTPort
}

// Observers collects the optional sinks domains report to.
type Observers struct {
	Publisher events.Publisher
	Unit      relation.Observer
	Auth      identity.Recorder
}

// NewDomain creates domain services with dependencies.
func NewDomain(
	ports *OutboundPorts,
	obs Observers,
	uowConfig *relation.Config,
	calendarConfig *calendar.Config,
	logger *zap.Logger,
) *Domain {
	uow := relation.NewCoordinator(
		ports.Tx,
		ports.Lock,
		obs.Publisher,
		obs.Unit,
		uowConfig,
		logger.Named("uow"),
	)

	invitationDomain := invitation.NewDomain(
		ports.UserDB,
		ports.CalendarDB,
		ports.InvitationDB,
		uow,
		logger.Named("invitation"),
	)

	return &Domain{
		Identity: identity.NewDomain(
			ports.UserDB,
			ports.Hasher,
			ports.JWT,
			obs.Auth,
			logger.Named("identity"),
		),
		Calendar: calendar.NewDomain(
			ports.UserDB,
			ports.CalendarDB,
			ports.TaskDB,
			ports.InvitationDB,
			ports.ActivityDB,
			ports.TodoDB,
			invitationDomain,
			uow,
			calendarConfig,
			logger.Named("calendar"),
		),
		Invitation: invitationDomain,
		Activity: activity.NewDomain(
			ports.CalendarDB,
			ports.ActivityDB,
			ports.TodoDB,
			uow,
			logger.Named("activity"),
		),
		Coordinator: uow,
	}
}
