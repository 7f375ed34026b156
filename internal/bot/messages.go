package bot

import "fmt"

const helpTemplate = `Here are my commands!

**roll**
Rolls for random teams amongst the players and team size provided.

Usage: %[1]s roll [team size] <tag players>
Example: %[1]s roll 3 @Speedy @Rollie ...

**reroll**
Re-run the most recent roll with the same players and team size.

Usage: %[1]s reroll

**glue**
Glue-ing allows two or more players to always to the same team.

Usage: %[1]s glue <tag players>
Example: %[1]s glue @Speedy @Rollie ...

**unglue**
Remove all the glue.

Usage: %[1]s unglue

**whosglued**
See who is glued.

Usage: %[1]s whosglued
`

const helpHint = "\n*%s help* for a list of commands and examples\n"

const msgAllGlueRemoved = "All glue removed."

// messages — фиксированные ответы; префикс команды подставляется один раз.
type messages struct {
	help            string
	noPlayers       string
	noTeamSize      string
	invalidTeamSize string
	noRecentRoll    string
	glueNoPlayers   string
	nobodyGlued     string
	unknownCommand  string
	internalError   string
}

func newMessages(prefix string) messages {
	hint := fmt.Sprintf(helpHint, prefix)
	return messages{
		help:            fmt.Sprintf(helpTemplate, prefix),
		noPlayers:       "You forgot to tag who is playing!\n" + hint,
		noTeamSize:      "You must provide a team size!\n" + hint,
		invalidTeamSize: "Team size must be at least 1!\n" + hint,
		noRecentRoll:    "You can't use **reroll** if you have not used **roll** recently!\n" + hint,
		glueNoPlayers:   "You need to tag two or more players to glue!\n" + hint,
		nobodyGlued:     "Nobody is glued right now.",
		unknownCommand:  "I don't know that command!\n" + hint,
		internalError:   "Something went wrong, try again.",
	}
}
