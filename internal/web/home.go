package web

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

func Home(games []GameSummary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!doctype html>
<html lang="pt-BR">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Stop!</title>
    <link rel="stylesheet" href="/static/styles.css"/>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <span class="tag">Stop!</span>
        <h1>Pense rápido. Escreva mais rápido.</h1>
        <p>Crie uma sala ou entre em uma partida com o código.</p>
      </header>

      <section class="panel">
        <div>
          <h2>Criar sala</h2>
          <p>Abra uma sala nova e compartilhe o código com os jogadores.</p>
        </div>
        <button id="createGame" class="primary">Criar sala</button>
        <div id="createResult" class="result"></div>
      </section>

      <section class="panel">
        <div>
          <h2>Entrar em uma sala</h2>
          <p>Digite o código da sala e seu nome.</p>
        </div>
        <form id="joinForm" class="join-form">
          <input name="code" placeholder="Código da sala" autocomplete="off" required/>
          <input name="name" placeholder="Seu nome" autocomplete="name" required/>
          <button type="submit" class="secondary">Entrar</button>
        </form>
        <div id="joinResult" class="result"></div>
      </section>

      <section class="panel">
        <h2>Salas abertas</h2>
        <ul class="room-list" id="roomList">
`); err != nil {
			return err
		}
		for _, game := range games {
			lock := ""
			if game.IsPrivate {
				lock = " 🔒"
			}
			row := fmt.Sprintf(
				`          <li data-code=%q><span class="room-name">%s%s</span> <span class="room-meta">%d/%d · %s</span></li>`+"\n",
				html.EscapeString(game.JoinCode),
				html.EscapeString(game.Name),
				lock,
				game.Players,
				game.MaxPlayers,
				html.EscapeString(game.Phase),
			)
			if _, err := io.WriteString(w, row); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `        </ul>
      </section>
    </main>
    <script src="/static/home.js"></script>
  </body>
</html>
`)
		return err
	})
}
