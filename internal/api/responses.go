package api

import (
	"github.com/gin-gonic/gin"
)

// Machine message keys. These form the stable wire contract; display
// text is rendered from them at the presentation edge, never here.
const (
	MsgError            = "error"
	MsgValidationError  = "validationError"
	MsgNotAuthenticated = "notAuthenticated"
	MsgNotAuthorized    = "notAuthorized"
	MsgNoFileAccess     = "noFileAccess"

	MsgFetchingSuccessful        = "fetchingSuccessful"
	MsgIsAuthenticated           = "isAuthenticated"
	MsgLoginSuccessful           = "loginSuccessful"
	MsgLogoutSuccessful          = "logoutSuccessful"
	MsgMediaItemNotFound         = "mediaItemNotFound"
	MsgMediaItemAddSuccessful    = "mediaItemAddSuccessful"
	MsgMediaItemEditSuccessful   = "mediaItemEditSuccessful"
	MsgMediaItemDeleteSuccessful = "mediaItemDeleteSuccessful"
	MsgUploadSuccessful          = "uploadSuccessful"
	MsgFileUploadError           = "fileUploadError"
	MsgPartyNotFound             = "partyNotFound"
	MsgPartyCreateSuccessful     = "partyCreateSuccessful"
	MsgPartyUpdateSuccessful     = "partyUpdateSuccessful"
	MsgPartyDeleteSuccessful     = "partyDeleteSuccessful"
	MsgMetadataFetchSuccessful   = "metadataFetchSuccessful"
	MsgMetadataFetchFailed       = "metadataFetchFailed"
)

// respond writes the uniform JSON envelope. extra fields are merged
// beside success and msg.
func respond(c *gin.Context, status int, success bool, msg string, extra gin.H) {
	body := gin.H{
		"success": success,
		"msg":     msg,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func respondOK(c *gin.Context, msg string, extra gin.H) {
	respond(c, 200, true, msg, extra)
}

func respondError(c *gin.Context, status int, msg string) {
	respond(c, status, false, msg, nil)
}
