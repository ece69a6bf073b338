/*
Package ssaead implements the AEAD-protected chunk stream used as the data
channel of the proxy protocol.

An encrypted stream starts with a random salt, followed by any number of
encrypted chunks. Each chunk has the following structure:

    [encrypted payload length]
    [payload length tag]
    [encrypted payload]
    [payload tag]

Payload length is a 2-byte unsigned big-endian integer capped at 0x3FFF
(16383). The salt is transmitted exactly once per stream direction and is
mixed with the pre-shared key through HKDF-SHA1 (info "ss-subkey") to derive
that direction's session subkey. The AEAD nonce is a 12-byte little-endian
counter starting at zero, incremented by one after each successful
encrypt/decrypt operation, so chunks must be processed strictly in order.

Unlike a net.Conn wrapper, the core type here is a push-style transform
(Preset): the surrounding pipeline feeds it raw bytes in whatever fragments
the transport produced and receives complete decrypted chunks through a
callback. Conn adapts a Preset back onto a net.Conn for pull-style callers.
*/
package ssaead
