// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package grants manages explicit ballot permissions.

A grant gives one user a level on one ballot: viewer, voter, editor or admin.
Callers with edit access may grant up to editor; admin is reserved to the
owner. An invitation is a grant addressed to an email with no user yet; it
grants nothing until AcceptInvitation binds it to a user ID.
*/
package grants
