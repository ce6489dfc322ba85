// Package sse delivers search input events to the page over Server-Sent
// Events.
//
// A Hub routes frames to connected clients. Client IDs have the form
// "<session>:<connection>", so publishing to SessionPattern(session)
// reaches every connection watching that session.
//
//	hub := sse.NewHub(log)
//	hub.Start()
//	defer hub.Stop()
//
//	router.GET("/sessions/:id/events", func(c *gin.Context) {
//		sse.ServeSSE(hub, c.Writer, c.Request, sse.NewClientID(c.Param("id")))
//	})
//
//	hub.Publish(sse.SessionPattern(id), "query", map[string]string{"query": "red shoes"})
package sse
