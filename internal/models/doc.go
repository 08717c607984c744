// Package models defines the core domain models for watchtogether.
//
// # Models
//
//   - User: Registered account, including the genres picked during onboarding
//   - Group: A "watch together" group joined through a 6-character join code
//   - Movie: Metadata fetched from the movie metadata service
//   - Rating: A user's recorded swipe outcome for one movie
//
// # Design Principles
//
// 1. **IDs, not pointers**: Relationships are expressed by ID strings (or TMDb
// integer ids for movies) to avoid circular references.
// 2. **One membership edge**: A user's group set and a group's member set are
// two views of the same edge, so they can never disagree.
// 3. **Opaque metadata**: Movie carries the raw upstream document alongside
// the handful of fields the service reads.
package models
