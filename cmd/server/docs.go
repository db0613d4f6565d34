// Package main Calshare Server API
//
//	@title						Calshare Server API
//	@version					1.0
//	@description				Shared weekly calendars: calendars, invitations and per-member weekly activities.
//
//	@contact.name				Calshare Maintainers
//
//	@license.name				MIT
//
//	@host						localhost:8080
//	@BasePath					/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"
//
//	@tag.name					Auth
//	@tag.description			Registration, login and the current user
//
//	@tag.name					Calendar
//	@tag.description			Calendars, members, admins and the task catalog
//
//	@tag.name					Invitation
//	@tag.description			Invitations and their answers
//
//	@tag.name					Activity
//	@tag.description			Weekly activities and todo toggles
package main
