// Package prefs declares the boundary contracts the delivery core consumes:
// the preference resolver that decides per channel whether to send, defer or
// digest, and the contact lookup that resolves a user's email, phone and
// registered device tokens.
//
// Real implementations live with the surrounding application (preference
// CRUD, device registration and so on are out of scope here). The package
// ships a StaticResolver that encodes the fixed type→category mapping and
// the bypass allow-list, and allows everything instantly; it serves as the
// default in development and in tests.
package prefs
