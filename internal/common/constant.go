// Package common contains shared constants and sentinel errors used across
// the custodian server, its transports and the operator CLI.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// verified-identity token on inbound requests.
const AccessTokenHeaderName = "access_token"

// GenericAccessDenied is the only message shown to callers for both missing
// and unauthorized resources, so that the existence of a case or code is not
// confirmed to an unauthorized party.
const GenericAccessDenied = "access denied"

// CredentialsUnavailable is shown when stored credentials cannot be decrypted.
const CredentialsUnavailable = "Unable to retrieve credentials, please contact support"
