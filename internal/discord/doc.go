// Package discord — минимальный клиент Discord для текстового бота:
// gateway (WebSocket v10, JSON) и REST (отправка/удаление сообщений).
//
// Gateway:
//   - Hello → Identify (intents + статус бота) → READY → MESSAGE_CREATE;
//   - heartbeat с проверкой ACK: неподтверждённый heartbeat рвёт соединение;
//   - реконнект с экспоненциальным backoff (1s..30s) и Resume по
//     resume_gateway_url, если сессия ещё жива; op 9 без resumable —
//     новый Identify;
//   - close-коды 4004, 4010..4014 фатальны: Done() закрывается, Err()
//     возвращает причину.
//
// События (колбэки поля структуры Gateway):
//   - OnConnecting, OnReady, OnResumed, OnMessage, OnDisconnected, OnError.
//
// REST ограничен golang.org/x/time/rate и один раз повторяет запрос после 429.
//
// Пример:
//
//	gw := discord.NewGateway("", token, discord.DefaultIntents,
//	    discord.ListeningPresence("!teams commands"))
//	rest := discord.NewREST(token, "", 0)
//	gw.OnMessage = func(m *discord.Message) {
//	    _, _ = rest.CreateMessage(ctx, m.ChannelID, "pong")
//	}
//	if err := gw.Connect(ctx); err != nil { log.Fatal(err) }
//	defer gw.Disconnect()
package discord
