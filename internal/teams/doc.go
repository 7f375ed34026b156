// Package teams — ядро бота: случайное разбиение игроков на команды с учётом
// "клея" (glue), хранилища состояния по сессиям и форматирование ответов.
//
// Состав:
//   - Partition — чистая функция разбиения игроков на команды. Склеенные
//     группы никогда не разрываются, размер команд выравнивается, выбор
//     команды случайный (источник случайности передаётся снаружи).
//   - GlueRegistry — группы склеенных игроков по ключу сессии (гильдия,
//     сервер Rust+ и т.п.).
//   - RollHistory — параметры последнего броска для !teams reroll.
//   - Formatter — текст ответа (список команд / список клея) и
//     циклический счётчик имён команд.
//
// Пакет ничего не знает про чат-платформы: упоминания игроков строятся
// через MentionFunc, которую передаёт фронтенд.
//
// Пример:
//
//	rng := rand.New(rand.NewPCG(1, 2))
//	assignment, err := teams.Partition(rng, players, 3, glue.Current(key))
//	if err != nil { ... }
//	fmt.Print(teams.NewFormatter(nil).Teams(assignment, teams.DiscordMention))
package teams
