// Package rpclient реализует WebSocket-клиент Rust+ (Facepunch Companion)
// в объёме, нужном боту команд: тим-чат и состав команды.
//
// Клиент умеет подключаться напрямую к серверу (ws://ip:port) либо через
// прокси Facepunch (wss://companion-rust.facepunch.com/game/...), отправлять
// AppRequest и получать AppMessage, автоматически реконнектиться.
// Сообщения кодируются protobuf'ом вручную через protowire (messages.go):
// сгенерированные типы для всего rustplus.proto боту не нужны.
//
// События (колбэки поля структуры):
//   - OnConnecting, OnConnected, OnMessage, OnDisconnected, OnError, OnRequest.
//
// Безопасность и устойчивость:
//   - Запись в сокет сериализована (мьютекс + write-deadline).
//   - Есть keep-alive: ping/pong через proxy или "app-heartbeat" для прямого
//     соединения. При проблемах — экспоненциальный реконнект и сброс ожидающих
//     колбэков с ошибкой.
//
// Пример:
//
//	rp := rpclient.New("1.2.3.4", 28082, playerID, playerToken, false)
//	rp.OnMessage = func(m *rpclient.AppMessage) {
//	    if tm := m.GetBroadcast().GetTeamMessage(); tm != nil {
//	        fmt.Println(tm.Name, tm.Message)
//	    }
//	}
//	if err := rp.Connect(ctx); err != nil { log.Fatal(err) }
//	defer rp.Disconnect()
//
//	_ = rp.BotSay("Hello team!")
//
//	team, err := rp.TeamInfo(ctx) // не из OnMessage
package rpclient
