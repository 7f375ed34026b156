// Package bot — диспетчер команд поверх internal/teams и фронтенды для
// Discord (internal/discord) и тим-чата Rust+ (internal/rpclient). Бот:
//   - разбирает "!teams <команда> [аргументы]" (roll, reroll, glue, unglue,
//     whosglued, help);
//   - держит состояние (склейки, последний бросок) отдельно для каждой
//     сессии: сервера Discord, личного канала или сервера Rust+;
//   - превращает ошибки ядра в фиксированные ответы для чата.
//
// Жизненный цикл:
//   - Создать бота через New(cfg.Bot, logger).
//   - Передать фронтенды: SetDiscord(gw, rest), AddRustPlus(rp) (сколько угодно).
//   - Run(ctx) — блокируется до отмены контекста или фатальной ошибки
//     фронтенда (например, неверный токен Discord).
//
// Пример:
//
//	b := bot.New(cfg.Bot, logger)
//	b.SetDiscord(discord.NewGateway(...), discord.NewREST(...))
//	for _, rc := range cfg.RustPlus {
//		b.AddRustPlus(rpclient.New(rc.Server, rc.Port, rc.PlayerID, rc.PlayerToken, rc.UseProxy))
//	}
//	if err := b.Run(ctx); err != nil { logger.Fatal("bot", zap.Error(err)) }
//
// Для тестов и офлайн-броска фронтенды не нужны: HandleCommand и методы
// Roll/Reroll/GlueCommand/UnglueCommand/WhosGlued/Help работают напрямую.
package bot
