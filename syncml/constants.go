// SPDX-License-Identifier: GPL-3.0-or-later
package syncml

// Alert codes
const (
	AlertDisplay                   = 100
	AlertTwoWay                    = 200
	AlertSlowSync                  = 201
	AlertOneWayFromClient          = 202
	AlertRefreshFromClient         = 203
	AlertOneWayFromServer          = 204
	AlertRefreshFromServer         = 205
	AlertTwoWayByServer            = 206
	AlertOneWayFromClientByServer  = 207
	AlertRefreshFromClientByServer = 208
	AlertOneWayFromServerByServer  = 209
	AlertRefreshFromServerByServer = 210
	AlertResultAlert               = 221
	AlertNextMessage               = 222
	AlertNoEndOfData               = 223
	AlertSuspend                   = 224
	AlertResume                    = 225
)

// Response codes
const (
	ResponseOK                                        = 200
	ResponseItemAdded                                 = 201
	ResponseAcceptedForProcessing                     = 202
	ResponseNonAuthoritativeResponse                  = 203
	ResponseNoContent                                 = 204
	ResponseResetContent                              = 205
	ResponsePartialContent                            = 206
	ResponseConflictResolvedWithMerge                 = 207
	ResponseConflictResolvedWithClientsCommandWinning = 208
	ResponseConflictResolvedWithDuplicate             = 209
	ResponseDeleteWithoutArchive                      = 210
	ResponseItemNotDeleted                            = 211
	ResponseAuthenticationAccepted                    = 212
	ResponseChunkedItemAcceptedAndBuffered            = 213
	ResponseOperationCancelled                        = 214
	ResponseNotExecuted                               = 215
	ResponseAtomicRollbackOK                          = 216
	ResponseMultipleChoices                           = 300
	ResponseBadRequest                                = 400
	ResponseInvalidCredentials                        = 401
	ResponsePaymentRequired                           = 402
	ResponseForbidden                                 = 403
	ResponseNotFound                                  = 404
	ResponseCommandNotAllowed                         = 405
	ResponseOptionalFeatureNotSupported               = 406
	ResponseCredentialsMissing                        = 407
	ResponseRequestTimeout                            = 408
	ResponseGone                                      = 410
	ResponseSizeRequired                              = 411
	ResponseIncompleteCommand                         = 412
	ResponseRequestEntityTooLarge                     = 413
	ResponseUnsupportedMediaType                      = 415
	ResponseRequestedSizeTooBig                       = 416
	ResponseAlreadyExists                             = 418
	ResponseConflictBetweenServerAndClient            = 419
	ResponseDeviceFull                                = 420
	ResponseSizeMismatch                              = 424
	ResponseCommandFailed                             = 500
	ResponseServiceUnavailable                        = 503
	ResponseRetryLater                                = 506
	ResponseRefreshRequired                           = 508
	ResponseServerFailure                             = 511
)

const (
	MimeSyncMLXML    = "application/vnd.syncml+xml"
	MimeSyncMLWBXML  = "application/vnd.syncml+wbxml"
	MimeDevInfXML    = "application/vnd.syncml-devinf+xml"
	MimeDevInfWBXML  = "application/vnd.syncml-devinf+wbxml"
	AuthTypeBasic    = "syncml:auth-basic"
	AuthTypeMD5      = "syncml:auth-md5"
	FormatBase64     = "b64"
	ServerMaxMsgSize = 1000000
	ServerMaxObjSize = 4000000
	// MsgDefaultLen is the size a message needs besides the items it carries.
	MsgDefaultLen = 4000
	// MsgTrailerLen is reserved for closing the message once it is full.
	MsgTrailerLen = 150
)

// Protocol versions as kept in State.Version.
const (
	Version10 = 0
	Version11 = 1
	Version12 = 2
)

// IsSyncAlert reports whether a client may start the sync of a database
// with code.
func IsSyncAlert(code int) bool {
	return (code >= AlertTwoWay && code <= AlertRefreshFromServer) || code == AlertResume
}
