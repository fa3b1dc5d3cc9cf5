// Package mock provides hand-written test doubles for quickdiff's
// collaborator interfaces.
package mock
