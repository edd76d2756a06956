// Package auth provides authentication for the admin surface.
// This file defines the public API of the auth bounded context.
// Only types and identifiers defined here should be imported by other domains.
package auth

import "consulting_leads_backend/internal/auth/service"

// RoleAdmin grants access to every /api/v1/admin route.
const RoleAdmin = service.RoleAdmin

// Profile represents admin account information that can be shared with other domains.
type Profile = service.Profile
