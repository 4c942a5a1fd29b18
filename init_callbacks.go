package main

import (
	"context"
	"log"
	"time"

	"github.com/Yash-SD99/Echoing-Hearts/pkg/geo"
	"github.com/Yash-SD99/Echoing-Hearts/services"
	"github.com/Yash-SD99/Echoing-Hearts/ws"
)

const callbackTimeout = 10 * time.Second

// registerHubCallbacks connects hub events to the services. The hub runs
// each callback in its own goroutine.
func registerHubCallbacks(hub *ws.Hub, svcs *Services) {
	hub.OnUserFirstConnect(func(userID string) {
		broadcastPresence(hub, svcs.Conversation, userID, true)
	})

	hub.OnUserFullyDisconnected(func(userID string) {
		svcs.Location.Forget(userID)
		broadcastPresence(hub, svcs.Conversation, userID, false)
	})

	hub.OnTyping(func(userID, conversationID string) {
		ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
		defer cancel()
		svcs.Conversation.NotifyTyping(ctx, userID, conversationID)
	})

	hub.OnLocationUpdate(func(userID string, data ws.LocationData) {
		p := geo.Point{Lat: data.Latitude, Lng: data.Longitude}
		if err := svcs.Location.Update(userID, p); err != nil {
			log.Printf("[ws] rejected location from user %s: %v", userID, err)
		}
	})
}

// broadcastPresence tells the user's conversation peers that they came
// online or went offline. Strangers never learn about each other's presence.
func broadcastPresence(hub *ws.Hub, conversations services.ConversationService, userID string, online bool) {
	ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
	defer cancel()

	peers, err := conversations.PeerIDs(ctx, userID)
	if err != nil {
		log.Printf("[presence] failed to load peers for user %s: %v", userID, err)
		return
	}
	if len(peers) == 0 {
		return
	}

	hub.BroadcastToUsers(peers, ws.Event{
		Op:   ws.OpPresenceUpdate,
		Data: ws.PresenceData{UserID: userID, Online: online},
	})
}
