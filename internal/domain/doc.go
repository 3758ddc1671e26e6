// Package domain contains the core business entities of the task
// management application: users, groups, memberships, tasks, comments and
// invitations, along with their validation rules and lifecycle invariants.
//
// Domain types are persistence-agnostic. They carry no references to
// stores or services, and relationships between entities are expressed as
// foreign-key IDs rather than object graphs.
package domain
