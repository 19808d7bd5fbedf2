package controller

import (
	"github.com/sharetube/multiview/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIDMw(), c.loggerWSMw(), c.validateWSMw())
	mux.OnError(c.writeError)

	wsrouter.Handle(mux, "ALIVE", c.handleAlive)

	// streams
	wsrouter.Handle(mux, "ADD_STREAM", c.handleAddStream)
	wsrouter.Handle(mux, "REMOVE_STREAM", c.handleRemoveStream)
	wsrouter.Handle(mux, "PROMOTE", c.handlePromote)

	// player
	wsrouter.Handle(mux, "TOGGLE_PLAY", c.handleTogglePlay)
	wsrouter.Handle(mux, "SET_VOLUME", c.handleSetVolume)
	wsrouter.Handle(mux, "TOGGLE_MUTE", c.handleToggleMute)
	wsrouter.Handle(mux, "KEY", c.handleKey)
	wsrouter.Handle(mux, "MEDIA_EVENT", c.handleMediaEvent)
	wsrouter.Handle(mux, "SET_QUALITY", c.handleSetQuality)
	wsrouter.Handle(mux, "TOGGLE_FULLSCREEN", c.handleToggleFullscreen)
	wsrouter.Handle(mux, "FULLSCREEN_STATE", c.handleFullscreenState)

	// chat and payments
	wsrouter.Handle(mux, "SEND_CHAT", c.handleSendChat)
	wsrouter.Handle(mux, "SEND_GIFT", c.handleSendGift)
	wsrouter.Handle(mux, "SEND_DONATION", c.handleSendDonation)

	return mux
}
