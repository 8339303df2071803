package web

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

func JoinView(code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<!doctype html>
<html lang="pt-BR">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Entrar · Stop!</title>
    <link rel="stylesheet" href="/static/styles.css"/>
  </head>
  <body>
    <main class="shell narrow">
      <h1>Entrar na sala</h1>
      <form id="joinForm" class="join-form" data-code=%q>
        <input name="code" placeholder="Código da sala" value=%q autocomplete="off" required/>
        <input name="name" placeholder="Seu nome" autocomplete="name" required/>
        <input name="password" type="password" placeholder="Senha (se houver)"/>
        <button type="submit" class="primary">Entrar</button>
      </form>
      <div id="joinResult" class="result"></div>
    </main>
    <script src="/static/join.js"></script>
  </body>
</html>
`, html.EscapeString(code), html.EscapeString(code))
		return err
	})
}

func GameView(gameID string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<!doctype html>
<html lang="pt-BR">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Stop!</title>
    <link rel="stylesheet" href="/static/styles.css"/>
  </head>
  <body>
    <main class="shell game" data-game-id=%q>
      <section id="lobby" class="phase-panel" hidden></section>
      <section id="playing" class="phase-panel" hidden>
        <div class="letter-banner"><span id="letter"></span><span id="timer"></span></div>
        <form id="answersForm"></form>
        <button id="stopButton" class="primary">STOP!</button>
      </section>
      <section id="judging" class="phase-panel" hidden>
        <p>O juiz está avaliando as respostas…</p>
      </section>
      <section id="results" class="phase-panel" hidden></section>
    </main>
    <script src="/static/game.js"></script>
  </body>
</html>
`, html.EscapeString(gameID))
		return err
	})
}
