// Package domain define contratos e tipos de domínio para o rate limit por
// origem e para o limite de concorrência do endpoint de contato.
//
// Este pacote não depende de net/http nem de implementações concretas
// (memória, Redis). Assim o handler HTTP e o adapter serverless compartilham
// as mesmas regras.
package domain
