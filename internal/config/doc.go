// Package config загружает настройки бота: YAML-файл (по умолчанию
// conf/teamsbot.yaml, может отсутствовать) и переменные окружения поверх
// него. Токен Discord берётся из RANDOM_TEAM_BOT_TOKEN.
//
// Пример conf/teamsbot.yaml:
//
//	bot:
//	  prefix: "!teams"
//	  team_names: [Dudes, Buds, Pals, Super Friend Squad, The Boys]
//	  delete_trigger: true
//	discord:
//	  status: "!teams commands"
//	rustplus:
//	  - server: 1.2.3.4
//	    port: 28082
//	    player_id: 76561198000000000
//	    player_token: 123456789
package config
